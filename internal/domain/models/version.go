package models

import (
	"time"
)

// DefaultVersionName is the name given to the community version that is
// lazily created on a fresh install, so content can always be stamped.
const DefaultVersionName = "v1.0"

// CommunityVersion is a global content partition key, not owned by a
// single user. Every folder and note carries a version_id and listing
// operations are implicitly scoped by the caller's selected version.
type CommunityVersion struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
