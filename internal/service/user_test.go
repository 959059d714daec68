package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dochub/internal/domain"
	"dochub/internal/domain/models"
	"dochub/internal/domain/services"
	"dochub/internal/policy"
)

type staticIssuer struct{ token string }

func (i *staticIssuer) Issue(_, _ string) (string, error) { return i.token, nil }

func seedUser(t *testing.T, repo *fakeUserRepo, email, password, role, status string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	user := &models.User{
		Email:        email,
		DisplayName:  "Seeded",
		PasswordHash: string(hash),
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	return user
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "ok@example.com", "correct horse", string(policy.RoleUser), models.UserStatusApproved)
	seedUser(t, repo, "off@example.com", "correct horse", string(policy.RoleUser), models.UserStatusDisabled)

	svc := NewAuthService(repo, &staticIssuer{token: "tok"}, testLogger())
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		resp, err := svc.Login(ctx, &services.LoginRequest{Email: "ok@example.com", Password: "correct horse"})
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if resp.Token != "tok" || resp.User.Email != "ok@example.com" {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &services.LoginRequest{Email: "ok@example.com", Password: "wrong"})
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("err = %v, want unauthorized", err)
		}
	})

	t.Run("unknown email matches wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &services.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("err = %v, want unauthorized", err)
		}
	})

	t.Run("disabled account", func(t *testing.T) {
		_, err := svc.Login(ctx, &services.LoginRequest{Email: "off@example.com", Password: "correct horse"})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("err = %v, want forbidden", err)
		}
	})
}

func newUserSvc(repo *fakeUserRepo) services.UserService {
	return NewUserService(repo, policy.NewChecker(policy.ModeEnforced), testLogger())
}

func TestCreateUserRoleEscalation(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserSvc(repo)
	ctx := context.Background()

	// Managers may provision plain users but not admins.
	if _, err := svc.CreateUser(ctx, managerCaller, &services.CreateUserRequest{
		Email: "plain@example.com", Password: "long enough secret", DisplayName: "P", Role: "user",
	}); err != nil {
		t.Fatalf("manager creates user: %v", err)
	}

	_, err := svc.CreateUser(ctx, managerCaller, &services.CreateUserRequest{
		Email: "boss@example.com", Password: "long enough secret", DisplayName: "B", Role: "admin",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("manager grants admin err = %v, want forbidden", err)
	}

	if _, err := svc.CreateUser(ctx, adminCaller, &services.CreateUserRequest{
		Email: "boss@example.com", Password: "long enough secret", DisplayName: "B", Role: "admin",
	}); err != nil {
		t.Fatalf("admin creates admin: %v", err)
	}
}

func TestUpdateUserStatusAndRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserSvc(repo)
	ctx := context.Background()

	target := seedUser(t, repo, "t@example.com", "pw-irrelevant", string(policy.RoleUser), models.UserStatusApproved)

	disabled := models.UserStatusDisabled
	updated, err := svc.UpdateUser(ctx, adminCaller, target.ID, &services.UpdateUserRequest{Status: &disabled})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Status != models.UserStatusDisabled {
		t.Errorf("status = %q, want disabled", updated.Status)
	}

	bogus := "limbo"
	if _, err := svc.UpdateUser(ctx, adminCaller, target.ID, &services.UpdateUserRequest{Status: &bogus}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("bogus status err = %v, want validation error", err)
	}

	// A manager may not touch an admin's role.
	boss := seedUser(t, repo, "boss@example.com", "pw-irrelevant", string(policy.RoleAdmin), models.UserStatusApproved)
	demote := "user"
	if _, err := svc.UpdateUser(ctx, managerCaller, boss.ID, &services.UpdateUserRequest{Role: &demote}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("manager demotes admin err = %v, want forbidden", err)
	}
}

func TestDeleteUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserSvc(repo)
	ctx := context.Background()

	target := seedUser(t, repo, "bye@example.com", "pw-irrelevant", string(policy.RoleUser), models.UserStatusApproved)

	if err := svc.DeleteUser(ctx, managerCaller, target.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("manager delete err = %v, want forbidden", err)
	}

	if err := svc.DeleteUser(ctx, adminCaller, adminCaller.ID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("self delete err = %v, want validation error", err)
	}

	if err := svc.DeleteUser(ctx, adminCaller, target.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := repo.GetByID(ctx, target.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("user still present after delete")
	}
}
