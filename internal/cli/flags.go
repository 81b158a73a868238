package cli

import (
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/blogtrans/internal/content"
	"codeberg.org/snonux/blogtrans/internal/language"
	"codeberg.org/snonux/blogtrans/internal/translation"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	BaseDir    string
	SourceLang string
	Extension  string
	LogLevel   string
	LogFormat  string
	Verbose    bool

	// Translation flags
	Languages            []string
	RetranslateLanguages []string
	Backend              string
	ChunkMode            string
	ChunkThreshold       int
	Attempts             int
	RetryDelay           time.Duration
	Pace                 time.Duration

	// Backend flags
	OllamaURL     string
	OllamaModel   string
	OllamaTimeout time.Duration
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiModel   string
	SkipPing      bool

	// Retranslate flags
	ManualFile string
	Backup     bool
	ArchiveDir string

	// Commit flags
	RunHooks bool

	// Journal flags
	JournalPath  string
	HistoryLimit int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		BaseDir:       content.DefaultBaseDir,
		SourceLang:    language.Source,
		Extension:     content.DefaultExtension,
		LogLevel:      "info",
		LogFormat:     "console",
		Backend:       translation.BackendGoogle,
		OllamaURL:     translation.DefaultOllamaURL,
		OllamaModel:   translation.DefaultOllamaModel,
		OllamaTimeout: 120 * time.Second,
		OpenAIModel:   "gpt-4o-mini",
		GeminiModel:   translation.DefaultGeminiModel,
		HistoryLimit:  10,
	}
}

// ApplyConfig copies values that were set in the config file or
// environment into f. Flags given on the command line win because viper
// reports them through the bound keys.
func (f *Flags) ApplyConfig() {
	setString(&f.BaseDir, "content.base_dir")
	setString(&f.SourceLang, "content.source_lang")
	setString(&f.Extension, "content.extension")
	setString(&f.ManualFile, "content.manual_file")
	setString(&f.ArchiveDir, "content.archive_dir")
	setBool(&f.Backup, "content.backup")

	setStrings(&f.Languages, "translation.languages")
	setStrings(&f.RetranslateLanguages, "translation.retranslate_languages")
	setString(&f.Backend, "translation.backend")
	setString(&f.ChunkMode, "translation.chunk_mode")
	setInt(&f.ChunkThreshold, "translation.chunk_threshold")
	setInt(&f.Attempts, "translation.attempts")
	setDuration(&f.RetryDelay, "translation.retry_delay")
	setDuration(&f.Pace, "translation.pace")

	setString(&f.OllamaURL, "ollama.url")
	setString(&f.OllamaModel, "ollama.model")
	setDuration(&f.OllamaTimeout, "ollama.timeout")
	setBool(&f.SkipPing, "ollama.skip_ping")
	setString(&f.OpenAIBaseURL, "openai.base_url")
	setString(&f.OpenAIModel, "openai.model")
	setString(&f.GeminiModel, "gemini.model")

	setBool(&f.RunHooks, "git.run_hooks")
	setString(&f.JournalPath, "journal.path")
	setString(&f.LogLevel, "log.level")
	setString(&f.LogFormat, "log.format")
}

func setString(dst *string, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetString(key)
	}
}

func setStrings(dst *[]string, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetStringSlice(key)
	}
}

func setInt(dst *int, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetInt(key)
	}
}

func setBool(dst *bool, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetBool(key)
	}
}

func setDuration(dst *time.Duration, key string) {
	if viper.IsSet(key) {
		*dst = viper.GetDuration(key)
	}
}
