package policy

import "testing"

func TestCan(t *testing.T) {
	tests := []struct {
		name   string
		role   Role
		action Action
		want   bool
	}{
		{"admin creates content", RoleAdmin, ActionCreateContent, true},
		{"admin deletes users", RoleAdmin, ActionDeleteUsers, true},
		{"admin manages versions", RoleAdmin, ActionManageVersions, true},
		{"manager updates content", RoleManager, ActionUpdateContent, true},
		{"manager cannot create content", RoleManager, ActionCreateContent, false},
		{"manager cannot delete content", RoleManager, ActionDeleteContent, false},
		{"manager manages users", RoleManager, ActionManageUsers, true},
		{"manager cannot delete users", RoleManager, ActionDeleteUsers, false},
		{"manager creates versions", RoleManager, ActionCreateVersion, true},
		{"manager cannot manage versions", RoleManager, ActionManageVersions, false},
		{"manager reviews requests", RoleManager, ActionReviewRequests, true},
		{"user views content", RoleUser, ActionViewContent, true},
		{"user empties own trash", RoleUser, ActionEmptyTrash, true},
		{"user recovers content", RoleUser, ActionRecoverContent, true},
		{"user cannot update content", RoleUser, ActionUpdateContent, false},
		{"user cannot manage users", RoleUser, ActionManageUsers, false},
		{"unknown role denied", Role("ghost"), ActionViewContent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Can(tt.role, tt.action); got != tt.want {
				t.Errorf("Can(%s, %s) = %v, want %v", tt.role, tt.action, got, tt.want)
			}
		})
	}
}

func TestVisibilityScope(t *testing.T) {
	tests := []struct {
		role Role
		want Scope
	}{
		{RoleUser, ScopeOwn},
		{RoleManager, ScopeAll},
		{RoleAdmin, ScopeAll},
		{Role("ghost"), ScopeOwn},
	}

	for _, tt := range tests {
		if got := VisibilityScope(tt.role); got != tt.want {
			t.Errorf("VisibilityScope(%s) = %s, want %s", tt.role, got, tt.want)
		}
	}
}

func TestCheckerPermissiveMode(t *testing.T) {
	enforced := NewChecker(ModeEnforced)
	permissive := NewChecker(ModePermissive)

	if enforced.Allows(RoleUser, ActionCreateContent) {
		t.Error("enforced checker should deny user content creation")
	}
	if !permissive.Allows(RoleUser, ActionCreateContent) {
		t.Error("permissive checker should allow everything")
	}
	if !permissive.Allows(Role("ghost"), ActionDeleteUsers) {
		t.Error("permissive checker should allow unknown roles")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("admin"); got != RoleAdmin {
		t.Errorf("Normalize(admin) = %s", got)
	}
	if got := Normalize("superuser"); got != RoleUser {
		t.Errorf("Normalize(superuser) = %s, want user", got)
	}
	if got := NormalizeMode("permissive"); got != ModePermissive {
		t.Errorf("NormalizeMode(permissive) = %s", got)
	}
	if got := NormalizeMode("development"); got != ModeEnforced {
		t.Errorf("NormalizeMode(development) = %s, want enforced", got)
	}
}
