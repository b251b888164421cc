package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mayike4315/gpt-web/internal"
	"github.com/spf13/cobra"
)

// textWidth is the number of terminal cells shown per message text
const textWidth = 60

var (
	listLimit int
	listJSON  bool
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	roleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored messages",
	Long: `List the stored messages in time order.

With --limit only the most recent N messages are shown. --json prints one
JSON object per message instead of a table.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}

		messages, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}
		if listLimit > 0 && len(messages) > listLimit {
			messages = messages[len(messages)-listLimit:]
		}

		out := cmd.OutOrStdout()
		if listJSON {
			return writeJSONLines(out, messages)
		}
		displayMessages(out, messages)
		return nil
	},
}

func writeJSONLines(w io.Writer, messages []internal.ChatMessage) error {
	for _, msg := range messages {
		data, err := msg.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to encode message %s: %w", msg.Key, err)
		}
		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return err
		}
	}
	return nil
}

func displayMessages(w io.Writer, messages []internal.ChatMessage) {
	if len(messages) == 0 {
		_, _ = fmt.Fprintln(w, headerStyle.Render("No messages stored"))
		return
	}

	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d message(s)", len(messages))))
	_, _ = fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("Key")+"\t"+titleStyle.Render("Time")+"\t"+titleStyle.Render("Role")+"\t"+titleStyle.Render("Text")+"\t")

	for _, msg := range messages {
		role := msg.Role()
		if role == "" {
			role = "-"
		}
		text := strings.ReplaceAll(msg.Text(), "\n", " ")
		text = ansi.Truncate(text, textWidth, "...")
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			idStyle.Render(msg.Key.String()),
			dateStyle.Render(formatTime(msg.Time)),
			roleStyle.Render(role),
			text)
	}
	_ = tw.Flush()
}

// formatTime renders millisecond times relative to now and other values as
// they were stored.
func formatTime(ts internal.Timestamp) string {
	t, ok := ts.Time()
	if !ok {
		return ts.String()
	}
	diff := time.Since(t)
	switch {
	case diff >= 0 && diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff >= 0 && diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff >= 0 && diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Show only the last N messages")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print messages as JSON lines")
}
