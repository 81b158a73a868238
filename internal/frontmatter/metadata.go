package frontmatter

import "strings"

// Metadata is an insertion-ordered key/value mapping of frontmatter fields
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata creates an empty metadata mapping
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]string)}
}

// Get returns the value stored for key
func (m *Metadata) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key. An existing key keeps its position.
func (m *Metadata) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Keys returns the keys in insertion order
func (m *Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of fields
func (m *Metadata) Len() int {
	return len(m.keys)
}

// Clone returns an independent copy
func (m *Metadata) Clone() *Metadata {
	c := NewMetadata()
	for _, k := range m.keys {
		c.Set(k, m.values[k])
	}
	return c
}

// ParseMetadata parses a frontmatter block line by line. Each line holding
// a colon is split on the first colon only; the value is trimmed of
// whitespace and surrounding double quotes. Lines without a colon are
// skipped. Values that themselves span lines or hold escaped quotes are not
// understood; see Lint.
func ParseMetadata(block string) *Metadata {
	m := NewMetadata()
	for _, line := range strings.Split(block, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		m.Set(strings.TrimSpace(key), strings.Trim(strings.TrimSpace(value), `"`))
	}
	return m
}

// RenderMetadata serializes m as a delimited block. Every value is quoted
// and embedded double quotes are escaped. The closing delimiter is followed
// by a blank line.
func RenderMetadata(m *Metadata) string {
	var b strings.Builder
	b.WriteString(Delimiter + "\n")
	for _, k := range m.keys {
		b.WriteString(k)
		b.WriteString(`: "`)
		b.WriteString(strings.ReplaceAll(m.values[k], `"`, `\"`))
		b.WriteString("\"\n")
	}
	b.WriteString(Delimiter + "\n\n")
	return b.String()
}
