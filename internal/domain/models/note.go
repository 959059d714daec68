package models

import (
	"time"
)

// Note lifecycle state is represented by (IsDeleted, DeletedAt):
// active when IsDeleted is false, trashed when true.
type Note struct {
	ID        string     `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Content   string     `json:"content" db:"content"`
	FolderID  *string    `json:"folder_id" db:"folder_id"` // NULL = not filed under a folder
	OwnerID   string     `json:"owner_id" db:"owner_id"`
	VersionID *string    `json:"version_id" db:"version_id"`
	Revision  int        `json:"revision" db:"revision"`
	IsDeleted bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// NoteRevision is one append-only entry in a note's revision log,
// recorded before a content-affecting update overwrites the row.
type NoteRevision struct {
	ID        string    `json:"id" db:"id"`
	NoteID    string    `json:"note_id" db:"note_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Revision  int       `json:"revision" db:"revision"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
