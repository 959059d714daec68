package config

const (
	// MaxNoteTitleLength is the maximum length for note titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxNoteTitleLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	// Same as note titles for consistency.
	MaxFolderNameLength = 255

	// MaxVersionNameLength is the maximum length for community version
	// names ("v1.0", "2024-spring", ...).
	MaxVersionNameLength = 100

	// MaxDisplayNameLength is the maximum length for user display names.
	MaxDisplayNameLength = 255

	// MaxDescriptionLength is the maximum length for folder and version
	// descriptions.
	MaxDescriptionLength = 1000
)
