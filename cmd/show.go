package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/mayike4315/gpt-web/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles for show command
	messageHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true)

	fieldNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show a stored message",
	Long:  `Display one stored message with all of its fields.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := internal.ParseKey(args[0])
		if err != nil {
			return err
		}

		store, _, err := openStore()
		if err != nil {
			return err
		}
		msg, err := store.Get(cmd.Context(), key)
		if err != nil {
			return err
		}

		displayMessage(cmd.OutOrStdout(), msg)
		return nil
	},
}

func displayMessage(w io.Writer, msg internal.ChatMessage) {
	_, _ = fmt.Fprintln(w, messageHeaderStyle.Render("Message #"+msg.Key.String()))

	role := msg.Role()
	style := assistantMessageStyle
	if role == "user" || role == "" {
		style = userMessageStyle
	}
	if role == "" {
		role = "message"
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", style.Render(role), timestampStyle.Render(msg.Time.String()))

	if text := msg.Text(); text != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, text)
	}

	names := msg.FieldNames()
	if len(names) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "%s %s\n", fieldNameStyle.Render(name+":"), string(msg.Fields[name]))
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
}
