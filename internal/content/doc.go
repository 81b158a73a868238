// Package content knows how blog posts are laid out on disk, one directory
// per language, and drives translating them: creating the translations
// that are missing, or deleting and recreating all machine translations
// while leaving hand-made ones alone.
package content
