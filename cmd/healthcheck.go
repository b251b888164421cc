package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mayike4315/gpt-web/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
	healthcheckAPI     bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the message store and backend are usable",
	Long: `Check the health of gpt-web by verifying:
  • Data directory resolution
  • Database open and schema version
  • Message count
  • Backend reachability (with --api, a HEAD request that leaves any
    open chat stream untouched)

Exits non-zero when a check fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		printLine := func(a ...any) { _, _ = fmt.Fprintln(out, a...) }

		printLine(sectionStyle.Render("gpt-web health check"))
		printLine()

		printLine(infoStyle.Render("Step 1: Resolving data paths..."))
		store, paths, err := openStore()
		if err != nil {
			printLine(errorStyle.Render("❌ Failed to resolve data paths:"), err)
			return err
		}
		printLine(successStyle.Render("✅ Data paths resolved"))
		if healthcheckVerbose {
			printLine("   Data dir:", paths.DataDir)
			printLine("   Database:", paths.DatabasePath)
			printLine("   Session id file:", paths.UIDPath)
		}
		if !paths.DatabaseExists() {
			printLine(warningStyle.Render("⚠️  Database does not exist yet, it will be created"))
		}
		printLine()

		printLine(infoStyle.Render("Step 2: Opening database..."))
		handle, err := store.Open(ctx)
		if err != nil {
			printLine(errorStyle.Render("❌ Failed to open database:"), err)
			return err
		}
		schemaVersion, err := handle.Version(ctx)
		if rerr := handle.Release(); rerr != nil {
			internal.LogWarn("Failed to release database handle: %v", rerr)
		}
		if err != nil {
			printLine(errorStyle.Render("❌ Failed to read schema version:"), err)
			return err
		}
		printLine(successStyle.Render(fmt.Sprintf("✅ Database ready (schema version %d)", schemaVersion)))
		printLine()

		printLine(infoStyle.Render("Step 3: Counting messages..."))
		count, err := store.Count(ctx)
		if err != nil {
			printLine(errorStyle.Render("❌ Failed to count messages:"), err)
			return err
		}
		printLine(successStyle.Render(fmt.Sprintf("✅ %d message(s) stored", count)))
		printLine()

		if healthcheckAPI {
			printLine(infoStyle.Render("Step 4: Contacting backend..."))
			client, err := newAPIClient()
			if err != nil {
				printLine(errorStyle.Render("❌ Backend not configured:"), err)
				return err
			}
			if err := client.Ping(ctx); err != nil {
				printLine(errorStyle.Render("❌ Backend unreachable:"), err)
				return err
			}
			printLine(successStyle.Render("✅ Backend reachable at " + client.BaseURL()))
			printLine()
		}

		printLine(successStyle.Render("✅ All checks passed"))
		internal.LogDebug("Health check finished for %s", paths.DatabasePath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "verbose", "V", false, "Show detailed information")
	healthcheckCmd.Flags().BoolVar(&healthcheckAPI, "api", false, "Also check that the backend answers")
}
