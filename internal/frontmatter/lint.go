package frontmatter

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Issue describes a field the line parser reads differently from YAML
type Issue struct {
	Key     string
	Naive   string
	YAML    string
	Message string
}

func (i Issue) String() string {
	if i.Key == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s (line parser %q, yaml %q)", i.Key, i.Message, i.Naive, i.YAML)
}

// Lint compares the line parser against a YAML decode of the same block and
// reports every field where they disagree. The line parser is what the
// translation pipeline uses; lint findings are for a reviewer to fix in the
// source post.
func Lint(block string) []Issue {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(block), &root); err != nil {
		return []Issue{{Message: fmt.Sprintf("invalid yaml: %v", err)}}
	}
	if len(root.Content) == 0 {
		return nil
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return []Issue{{Message: "frontmatter is not a key/value mapping"}}
	}

	naive := ParseMetadata(block)
	var issues []Issue
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		valueNode := mapping.Content[i+1]
		got, seen := naive.Get(key)

		if valueNode.Kind != yaml.ScalarNode {
			issues = append(issues, Issue{Key: key, Naive: got, Message: "structured value is flattened by the line parser"})
			continue
		}
		if !seen {
			issues = append(issues, Issue{Key: key, YAML: valueNode.Value, Message: "field not seen by the line parser"})
			continue
		}
		if got != valueNode.Value {
			issues = append(issues, Issue{Key: key, Naive: got, YAML: valueNode.Value, Message: "value differs"})
		}
	}
	return issues
}
