package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/blogtrans/internal"
)

// Runner executes the subcommands once configuration is resolved
type Runner interface {
	Sync(ctx context.Context) error
	Retranslate(ctx context.Context) error
	Commit(ctx context.Context) error
	Missing(ctx context.Context) error
	Stats(ctx context.Context) error
	Ping(ctx context.Context) error
	Models(ctx context.Context) error
	Lint(ctx context.Context, names []string) error
	History(ctx context.Context) error
}

// RunnerFactory builds the Runner from the resolved flags
type RunnerFactory func(flags *Flags) (Runner, error)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, newRunner RunnerFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blogtrans",
		Short: "Blog post translation pipeline",
		Long: `blogtrans keeps the translated copies of a blog in sync with the
English source posts.

Each post is a markdown document with a metadata block. The title,
summary and body are translated with the configured backend (google,
ollama, openai or gemini); failed translations keep the original text.

Examples:
  blogtrans missing                     # Show which translations are missing
  blogtrans sync                        # Create the missing translations
  blogtrans sync -b ollama -l es,fr     # Use a local model for two languages
  blogtrans retranslate --backup        # Redo all non-manual translations
  blogtrans commit                      # Commit the translated posts`,
		Version:      internal.Version,
		SilenceUsage: true,
	}

	setupFlags(rootCmd, flags)

	run := func(fn func(r Runner, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			flags.ApplyConfig()
			runner, err := newRunner(flags)
			if err != nil {
				return err
			}
			return fn(runner, cmd, args)
		}
	}

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Create translations that do not exist yet",
		Args:  cobra.NoArgs,
		RunE: run(func(r Runner, cmd *cobra.Command, _ []string) error {
			return r.Sync(cmd.Context())
		}),
	}

	retranslateCmd := &cobra.Command{
		Use:   "retranslate",
		Short: "Delete and recreate every non-manual translation",
		Args:  cobra.NoArgs,
		RunE: run(func(r Runner, cmd *cobra.Command, _ []string) error {
			return r.Retranslate(cmd.Context())
		}),
	}
	retranslateCmd.Flags().StringSliceVar(&flags.RetranslateLanguages, "retranslate-languages", nil, "Target languages for retranslation (default: es,ar,ru,hi,bn,ur)")
	retranslateCmd.Flags().StringVar(&flags.ManualFile, "manual-file", "", "File listing additional manually maintained posts (one per line)")
	retranslateCmd.Flags().BoolVar(&flags.Backup, "backup", false, "Copy existing translations to the archive directory before deleting them")
	retranslateCmd.Flags().StringVar(&flags.ArchiveDir, "archive-dir", "", "Backup directory (default: archive next to the content directory)")

	commitCmd := &cobra.Command{
		Use:   "commit",
		Short: "Stage and commit the content directory",
		Args:  cobra.NoArgs,
		RunE: run(func(r Runner, cmd *cobra.Command, _ []string) error {
			return r.Commit(cmd.Context())
		}),
	}
	commitCmd.Flags().BoolVar(&flags.RunHooks, "run-hooks", false, "Run git commit hooks (skipped by default)")

	missingCmd := &cobra.Command{
		Use:   "missing",
		Short: "List translations that do not exist yet",
		Args:  cobra.NoArgs,
		RunE: run(func(r Runner, cmd *cobra.Command, _ []string) error {
			return r.Missing(cmd.Context())
		}),
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the number of posts per language",
		Args:  cobra.NoArgs,
		RunE: run(func(r Runner, cmd *cobra.Command, _ []string) error {
			return r.Stats(cmd.Context())
		}),
	}

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the translation backend is reachable",
		Args:  cobra.NoArgs,
		RunE: run(func(r Runner, cmd *cobra.Command, _ []string) error {
			return r.Ping(cmd.Context())
		}),
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List models offered by the ollama or openai backend",
		Args:  cobra.NoArgs,
		RunE: run(func(r Runner, cmd *cobra.Command, _ []string) error {
			return r.Models(cmd.Context())
		}),
	}

	lintCmd := &cobra.Command{
		Use:   "lint [post...]",
		Short: "Report metadata fields the line parser reads differently from YAML",
		RunE: run(func(r Runner, cmd *cobra.Command, args []string) error {
			return r.Lint(cmd.Context(), args)
		}),
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs recorded in the journal",
		Args:  cobra.NoArgs,
		RunE: run(func(r Runner, cmd *cobra.Command, _ []string) error {
			return r.History(cmd.Context())
		}),
	}
	historyCmd.Flags().IntVar(&flags.HistoryLimit, "limit", flags.HistoryLimit, "Number of runs to show")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blogtrans %s\n", internal.Version)
		},
	}

	rootCmd.AddCommand(syncCmd, retranslateCmd, commitCmd, missingCmd, statsCmd,
		pingCmd, modelsCmd, lintCmd, historyCmd, versionCmd)

	bindFlagsToViper(rootCmd)
	bindFlagsToViper(retranslateCmd)
	bindFlagsToViper(commitCmd)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.blogtrans.yaml)")
	pf.StringVarP(&flags.BaseDir, "base-dir", "d", flags.BaseDir, "Content directory holding one subdirectory per language")
	pf.StringVar(&flags.SourceLang, "source", flags.SourceLang, "Source language code")
	pf.StringVar(&flags.Extension, "ext", flags.Extension, "Post file extension")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: console or json")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")

	// Translation flags
	pf.StringSliceVarP(&flags.Languages, "languages", "l", nil, "Target languages (default: ar,bn,de,es,fr,hi,ja,pt,ru,ur,zh)")
	pf.StringVarP(&flags.Backend, "backend", "b", flags.Backend, "Translation backend: google, ollama, openai, gemini")
	pf.StringVar(&flags.ChunkMode, "chunk-mode", "", "Body chunking: lines or paragraphs (default depends on backend)")
	pf.IntVar(&flags.ChunkThreshold, "chunk-threshold", 0, "Maximum chunk length in characters (default depends on backend)")
	pf.IntVar(&flags.Attempts, "attempts", 0, "Attempts per chunk before keeping the original text (default 3)")
	pf.DurationVar(&flags.RetryDelay, "retry-delay", 0, "Delay between attempts (default depends on backend)")
	pf.DurationVar(&flags.Pace, "pace", 0, "Delay after each successful call (default depends on backend)")

	// Backend flags
	pf.StringVar(&flags.OllamaURL, "ollama-url", flags.OllamaURL, "Ollama generate endpoint")
	pf.StringVar(&flags.OllamaModel, "ollama-model", flags.OllamaModel, "Ollama model")
	pf.DurationVar(&flags.OllamaTimeout, "ollama-timeout", flags.OllamaTimeout, "Ollama request timeout")
	pf.BoolVar(&flags.SkipPing, "skip-ping", false, "Do not probe the ollama server before a run")
	pf.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "OpenAI compatible API base URL")
	pf.StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model")
	pf.StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model")

	// Journal flags
	pf.StringVar(&flags.JournalPath, "journal", "", "SQLite journal recording each run (disabled when empty)")
}

var flagKeys = map[string]string{
	"base-dir":              "content.base_dir",
	"source":                "content.source_lang",
	"ext":                   "content.extension",
	"manual-file":           "content.manual_file",
	"backup":                "content.backup",
	"archive-dir":           "content.archive_dir",
	"languages":             "translation.languages",
	"retranslate-languages": "translation.retranslate_languages",
	"backend":               "translation.backend",
	"chunk-mode":            "translation.chunk_mode",
	"chunk-threshold":       "translation.chunk_threshold",
	"attempts":              "translation.attempts",
	"retry-delay":           "translation.retry_delay",
	"pace":                  "translation.pace",
	"ollama-url":            "ollama.url",
	"ollama-model":          "ollama.model",
	"ollama-timeout":        "ollama.timeout",
	"skip-ping":             "ollama.skip_ping",
	"openai-base-url":       "openai.base_url",
	"openai-model":          "openai.model",
	"gemini-model":          "gemini.model",
	"run-hooks":             "git.run_hooks",
	"journal":               "journal.path",
	"log-level":             "log.level",
	"log-format":            "log.format",
}

func bindFlagsToViper(cmd *cobra.Command) {
	bind := func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = viper.BindPFlag(key, f)
		}
	}
	cmd.PersistentFlags().VisitAll(bind)
	cmd.Flags().VisitAll(bind)
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".blogtrans" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".blogtrans")
	}

	// Environment variables
	viper.SetEnvPrefix("BLOGTRANS")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("openai.api_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("gemini.api_key")
}
