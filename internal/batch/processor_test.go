package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "empty file",
			content: "",
			want:    nil,
		},
		{
			name:    "only whitespace",
			content: "   \n\t\r\n   ",
			want:    nil,
		},
		{
			name:    "plain entries",
			content: "a.mdx\nb.mdx\nc.mdx",
			want:    []string{"a.mdx", "b.mdx", "c.mdx"},
		},
		{
			name: "comments",
			content: `# manual translations
a.mdx
  # indented comment
b.mdx # reviewed by a native speaker
`,
			want: []string{"a.mdx", "b.mdx"},
		},
		{
			name:    "windows line endings and duplicates",
			content: "a.mdx\r\nb.mdx\r\na.mdx\r\n",
			want:    []string{"a.mdx", "b.mdx"},
		},
		{
			name:    "surrounding whitespace",
			content: "\n  a.mdx  \n\n\tb.mdx\t\n",
			want:    []string{"a.mdx", "b.mdx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseList(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte("a.mdx\n# skip\nb.mdx\n"), 0644); err != nil {
		t.Fatalf("Failed to create list file: %v", err)
	}

	got, err := ReadList(path)
	if err != nil {
		t.Fatalf("ReadList failed: %v", err)
	}
	if want := []string{"a.mdx", "b.mdx"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ReadList() = %v, want %v", got, want)
	}
}

func TestReadList_NonExistentFile(t *testing.T) {
	if _, err := ReadList("/nonexistent/file.txt"); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestReadFileNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.txt")
	content := "en/a.mdx\na.mdx\nes/b.mdx\nc.mdx\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create list file: %v", err)
	}

	got, err := ReadFileNames(path)
	if err != nil {
		t.Fatalf("ReadFileNames failed: %v", err)
	}
	if want := []string{"a.mdx", "b.mdx", "c.mdx"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ReadFileNames() = %v, want %v", got, want)
	}
}
