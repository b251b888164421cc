package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mayike4315/gpt-web/internal"
	"github.com/mayike4315/gpt-web/internal/api"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	dataDir      string
	dbName       string
	apiBaseURL   string
	uid          string
	logFile      string
	telemetryDir string
	version      string = "dev"
	commit       string = "unknown"
	date         string = "unknown"
)

var (
	cfg               *internal.Config
	shutdownTelemetry func()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gpt-web",
	Short: "Keep a local chat history and talk to the chat backend",
	Long: `gpt-web stores chat messages in a local database and forwards chat
requests to the backend API.

Messages are kept in a per-user SQLite database, ordered by their time
value. Each message has a key assigned by the store.

Quick Start:
  gpt-web add --text "hello" --role user   # Store a message
  gpt-web list                             # Show the history
  gpt-web chat "what is the weather?"      # Ask the backend, keep both sides
  gpt-web export --format md               # Write the history as Markdown

Configuration is read from GPT_WEB_* environment variables (or a .env
file) and can be overridden with flags.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)

		loaded, err := internal.LoadConfig()
		if err != nil {
			return err
		}
		applyFlagOverrides(loaded)
		cfg = loaded

		if cfg.LogFile != "" {
			internal.SetLogFile(cfg.LogFile)
		}
		if cfg.TelemetryDir != "" && shutdownTelemetry == nil {
			shutdown, err := internal.InitTelemetry(context.Background(), cfg.TelemetryDir, version)
			if err != nil {
				internal.LogWarn("Telemetry disabled: %v", err)
			} else {
				shutdownTelemetry = shutdown
			}
		}
		return nil
	},
}

func applyFlagOverrides(c *internal.Config) {
	if dataDir != "" {
		c.DataDir = dataDir
	}
	if dbName != "" {
		c.DatabaseName = dbName
	}
	if apiBaseURL != "" {
		c.APIBaseURL = apiBaseURL
	}
	if uid != "" {
		c.UID = uid
	}
	if logFile != "" {
		c.LogFile = logFile
	}
	if telemetryDir != "" {
		c.TelemetryDir = telemetryDir
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(os.Stderr, fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

// openStore resolves the data paths and returns a store for them
func openStore() (*internal.MessageStore, internal.DataPaths, error) {
	paths, err := cfg.Paths()
	if err != nil {
		return nil, internal.DataPaths{}, fmt.Errorf("failed to resolve data paths: %w", err)
	}
	internal.LogDebug("Using database %s", paths.DatabasePath)
	return internal.NewMessageStore(paths.DatabasePath), paths, nil
}

// newAPIClient builds the backend client from the configuration
func newAPIClient() (*api.Client, error) {
	session, err := cfg.Session()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	client, err := api.NewClient(cfg.APIBaseURL, session, api.WithTimeout(cfg.APITimeout))
	if err != nil {
		return nil, fmt.Errorf("%w (set %sAPI_BASE_URL or --api-base-url)", err, internal.EnvPrefix)
	}
	return client, nil
}

func init() {
	cobra.OnFinalize(func() {
		if shutdownTelemetry != nil {
			shutdownTelemetry()
			shutdownTelemetry = nil
		}
		internal.SyncLogger()
	})

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding the database and session id")
	rootCmd.PersistentFlags().StringVar(&dbName, "db-name", "", "Database name (default \"chat-db\")")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-base-url", "", "Base URL of the chat backend")
	rootCmd.PersistentFlags().StringVar(&uid, "uid", "", "Session id sent in the uid header")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this rotating file")
	rootCmd.PersistentFlags().StringVar(&telemetryDir, "telemetry-dir", "", "Write OpenTelemetry traces and metrics to this directory")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
