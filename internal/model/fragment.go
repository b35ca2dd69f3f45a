package model

// RuleFragment is an atomic named unit of rule text loaded from a single file.
// The body is treated as an opaque blob; no semantic validation is performed.
type RuleFragment struct {
	// ID is the filename stem, unique within a category.
	ID string
	// Category identifies the tier the fragment was loaded from.
	Category Category
	// Body is the raw file content, byte-for-byte.
	Body string
	// Path is the file the fragment was loaded from.
	Path string
}

// SkillDescriptor describes one extended-category fragment for display.
type SkillDescriptor struct {
	// Name equals the fragment id.
	Name string
	// Description is the first non-empty, non-heading line of the body,
	// or a literal fallback when none exists.
	Description string
}
