package services

import (
	"context"

	"dochub/internal/domain/models"
)

// UserService handles user account management.
type UserService interface {
	ListUsers(ctx context.Context, caller Caller) ([]models.User, error)
	CreateUser(ctx context.Context, caller Caller, req *CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, caller Caller, id string, req *UpdateUserRequest) (*models.User, error)

	// DeleteUser removes an account (admin only).
	DeleteUser(ctx context.Context, caller Caller, id string) error
}

// AuthService authenticates credentials and issues access tokens.
type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
}

type CreateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type UpdateUserRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Role        *string `json:"role,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}
