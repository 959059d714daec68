package service

import (
	"fmt"

	"github.com/google/uuid"

	"dochub/internal/domain"
	"dochub/internal/domain/repositories"
	"dochub/internal/domain/services"
	"dochub/internal/policy"
)

// requireAction checks the caller's role against the policy table,
// returning a PermissionDenied error carrying the action and role.
func requireAction(checker *policy.Checker, caller services.Caller, action policy.Action) error {
	if checker.Allows(caller.Role, action) {
		return nil
	}
	return &domain.PermissionDeniedError{Action: string(action), Role: string(caller.Role)}
}

// visibilityFor derives the row filter from the caller's role scope.
func visibilityFor(caller services.Caller) repositories.Visibility {
	return repositories.Visibility{
		OwnerID: caller.ID,
		All:     policy.VisibilityScope(caller.Role) == policy.ScopeAll,
	}
}

// validateID rejects malformed UUIDs before any row-store call.
func validateID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s is not a valid UUID", domain.ErrValidation, field)
	}
	return nil
}

// validateOptionalID validates a nullable UUID parameter.
func validateOptionalID(field string, id *string) error {
	if id == nil {
		return nil
	}
	return validateID(field, *id)
}

// visible reports whether a row owned by ownerID resolves within the
// caller's visibility scope. Rows outside the scope are treated as
// not found, never as forbidden, to avoid leaking their existence.
func visible(caller services.Caller, ownerID string) bool {
	if policy.VisibilityScope(caller.Role) == policy.ScopeAll {
		return true
	}
	return ownerID == caller.ID
}
