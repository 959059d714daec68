// Package policy maps (role, action) to allow/deny and roles to their
// row visibility scope. It is pure and stateless; enforcement mode is an
// explicit configuration value, never inferred from the runtime
// environment.
package policy

type Role string
type Action string
type Scope string
type Mode string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

const (
	ActionCreateContent  Action = "content.create"
	ActionUpdateContent  Action = "content.update"
	ActionDeleteContent  Action = "content.delete"
	ActionViewContent    Action = "content.view"
	ActionRecoverContent Action = "content.recover"
	ActionEmptyTrash     Action = "trash.empty"
	ActionManageUsers    Action = "users.manage"
	ActionDeleteUsers    Action = "users.delete"
	ActionCreateVersion  Action = "versions.create"
	ActionManageVersions Action = "versions.manage"
	ActionReviewRequests Action = "approvals.review"
)

const (
	// ScopeOwn restricts queries to rows owned by the caller.
	ScopeOwn Scope = "own"
	// ScopeAll exposes every user's rows.
	ScopeAll Scope = "all"
)

const (
	// ModeEnforced applies the role table as written.
	ModeEnforced Mode = "enforced"
	// ModePermissive allows every action. Local development escape
	// hatch; must be set explicitly in configuration.
	ModePermissive Mode = "permissive"
)

// Can reports whether role may perform action.
func Can(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleManager:
		switch action {
		case ActionUpdateContent, ActionViewContent, ActionRecoverContent,
			ActionEmptyTrash, ActionManageUsers, ActionCreateVersion,
			ActionReviewRequests:
			return true
		}
		return false
	case RoleUser:
		switch action {
		case ActionViewContent, ActionRecoverContent, ActionEmptyTrash:
			return true
		}
		return false
	default:
		return false
	}
}

// VisibilityScope returns the row-filtering scope for a role. Managers
// and admins see all users' content; plain users see only their own.
func VisibilityScope(role Role) Scope {
	if role == RoleManager || role == RoleAdmin {
		return ScopeAll
	}
	return ScopeOwn
}

// Normalize maps an arbitrary role string to a known role, defaulting
// to the least privileged.
func Normalize(role string) Role {
	switch Role(role) {
	case RoleUser, RoleManager, RoleAdmin:
		return Role(role)
	default:
		return RoleUser
	}
}

// NormalizeMode maps a configuration string to an enforcement mode,
// defaulting to enforced.
func NormalizeMode(mode string) Mode {
	if Mode(mode) == ModePermissive {
		return ModePermissive
	}
	return ModeEnforced
}

// Checker evaluates actions under a fixed enforcement mode.
type Checker struct {
	mode Mode
}

func NewChecker(mode Mode) *Checker {
	return &Checker{mode: mode}
}

// Allows reports whether role may perform action under the checker's
// mode. Permissive mode allows everything.
func (c *Checker) Allows(role Role, action Action) bool {
	if c.mode == ModePermissive {
		return true
	}
	return Can(role, action)
}

func (c *Checker) Mode() Mode { return c.mode }
