package models

import (
	"time"
)

type Folder struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	ParentID    *string    `json:"parent_id" db:"parent_id"` // NULL = root level
	Description string     `json:"description" db:"description"`
	OwnerID     string     `json:"owner_id" db:"owner_id"`
	VersionID   *string    `json:"version_id" db:"version_id"`
	IsDeleted   bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
