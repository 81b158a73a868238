package cli

import (
	"reflect"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"BaseDir", flags.BaseDir, "apps/web/src/content/blog"},
		{"SourceLang", flags.SourceLang, "en"},
		{"Extension", flags.Extension, ".mdx"},
		{"LogLevel", flags.LogLevel, "info"},
		{"LogFormat", flags.LogFormat, "console"},
		{"Backend", flags.Backend, "google"},
		{"OllamaURL", flags.OllamaURL, "http://localhost:11434/api/generate"},
		{"OllamaModel", flags.OllamaModel, "yue-f"},
		{"OllamaTimeout", flags.OllamaTimeout, 120 * time.Second},
		{"OpenAIModel", flags.OpenAIModel, "gpt-4o-mini"},
		{"GeminiModel", flags.GeminiModel, "gemini-2.5-flash"},
		{"HistoryLimit", flags.HistoryLimit, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test boolean defaults (should be false)
	boolTests := []struct {
		name  string
		value bool
	}{
		{"Verbose", flags.Verbose},
		{"SkipPing", flags.SkipPing},
		{"Backup", flags.Backup},
		{"RunHooks", flags.RunHooks},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	// Zero values mean "use the backend default"
	if flags.Languages != nil || flags.ChunkMode != "" || flags.ChunkThreshold != 0 ||
		flags.Attempts != 0 || flags.RetryDelay != 0 || flags.Pace != 0 {
		t.Errorf("Expected backend dependent settings to be unset, got %+v", flags)
	}
}

func TestApplyConfig(t *testing.T) {
	resetViper(t)

	viper.Set("content.base_dir", "/srv/blog")
	viper.Set("translation.languages", []string{"es", "de"})
	viper.Set("translation.attempts", 5)
	viper.Set("translation.pace", "750ms")
	viper.Set("ollama.model", "llama3")
	viper.Set("git.run_hooks", true)
	viper.Set("journal.path", "/tmp/journal.db")

	flags := NewFlags()
	flags.ApplyConfig()

	if flags.BaseDir != "/srv/blog" {
		t.Errorf("Expected base dir /srv/blog, got %s", flags.BaseDir)
	}
	if !reflect.DeepEqual(flags.Languages, []string{"es", "de"}) {
		t.Errorf("Expected languages [es de], got %v", flags.Languages)
	}
	if flags.Attempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", flags.Attempts)
	}
	if flags.Pace != 750*time.Millisecond {
		t.Errorf("Expected pace 750ms, got %v", flags.Pace)
	}
	if flags.OllamaModel != "llama3" {
		t.Errorf("Expected model llama3, got %s", flags.OllamaModel)
	}
	if !flags.RunHooks {
		t.Error("Expected run hooks from config")
	}
	if flags.JournalPath != "/tmp/journal.db" {
		t.Errorf("Expected journal path, got %s", flags.JournalPath)
	}

	// Untouched keys keep their defaults
	if flags.Backend != "google" {
		t.Errorf("Expected default backend, got %s", flags.Backend)
	}
}

func TestFlagsStructure(t *testing.T) {
	flagsType := reflect.TypeOf(Flags{})

	expectedFields := []string{
		"CfgFile", "BaseDir", "SourceLang", "Extension", "LogLevel", "LogFormat", "Verbose",
		"Languages", "RetranslateLanguages", "Backend", "ChunkMode", "ChunkThreshold",
		"Attempts", "RetryDelay", "Pace",
		"OllamaURL", "OllamaModel", "OllamaTimeout", "OpenAIBaseURL", "OpenAIModel", "GeminiModel", "SkipPing",
		"ManualFile", "Backup", "ArchiveDir", "RunHooks", "JournalPath", "HistoryLimit",
	}

	for _, fieldName := range expectedFields {
		t.Run("has_field_"+fieldName, func(t *testing.T) {
			if _, ok := flagsType.FieldByName(fieldName); !ok {
				t.Errorf("Flags struct missing field: %s", fieldName)
			}
		})
	}
}
