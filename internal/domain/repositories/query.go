package repositories

// Visibility is the row filter derived from the caller's role scope.
// When All is false, queries are restricted to rows owned by OwnerID.
type Visibility struct {
	OwnerID string
	All     bool
}

// Capabilities describes which optional schema features the connected
// row store actually has. Resolved once at startup, either declared in
// configuration or probed, and treated as immutable afterwards.
type Capabilities struct {
	// TrashColumns is true when the notes and folders tables carry the
	// is_deleted/deleted_at columns of the trash migration. When false,
	// trash listings degrade to empty results, soft deletes degrade to
	// hard deletes, and recovery is refused.
	TrashColumns bool
}

// ContentQuery scopes note and folder listings. A nil VersionID means
// "no version filter"; FolderID filters notes to one folder; RootOnly
// restricts folders to the top level (parent_id IS NULL).
type ContentQuery struct {
	Visibility Visibility
	VersionID  *string
	FolderID   *string
	RootOnly   bool
}
