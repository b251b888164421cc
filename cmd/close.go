package cmd

import (
	"fmt"

	"github.com/mayike4315/gpt-web/internal"
	"github.com/spf13/cobra"
)

// closeCmd represents the close command
var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the backend event stream",
	Long:  `Ask the chat backend to close the server-sent event stream of this session.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if _, err := client.CloseStream(cmd.Context()); err != nil {
			return fmt.Errorf("failed to close stream: %w", err)
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Stream closed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(closeCmd)
}
