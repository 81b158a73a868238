// Package frontmatter splits blog posts into their delimiter-bounded
// metadata block and body, parses the block into an ordered key/value
// mapping and renders translated posts back to disk format.
package frontmatter
