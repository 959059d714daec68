package services

import (
	"dochub/internal/policy"
)

// Caller identifies the authenticated user on whose behalf a service
// operation runs. Every lifecycle operation is role-gated and
// visibility-scoped through it.
type Caller struct {
	ID   string
	Role policy.Role
}
