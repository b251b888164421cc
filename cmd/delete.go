package cmd

import (
	"fmt"

	"github.com/mayike4315/gpt-web/internal"
	"github.com/spf13/cobra"
)

var deleteAll bool

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <key>...",
	Short: "Delete stored messages",
	Long: `Delete messages by key. Deleting a key that does not exist is not an
error. --all removes every message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if deleteAll && len(args) > 0 {
			return fmt.Errorf("--all cannot be combined with keys")
		}
		if !deleteAll && len(args) == 0 {
			return fmt.Errorf("at least one key is required")
		}

		keys := make([]internal.Key, 0, len(args))
		for _, arg := range args {
			key, err := internal.ParseKey(arg)
			if err != nil {
				return err
			}
			keys = append(keys, key)
		}

		store, _, err := openStore()
		if err != nil {
			return err
		}

		if deleteAll {
			messages, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list messages: %w", err)
			}
			for _, msg := range messages {
				keys = append(keys, msg.Key)
			}
		}

		for _, key := range keys {
			if err := store.Delete(cmd.Context(), key); err != nil {
				return err
			}
			internal.LogDebug("Deleted message %s", key)
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Deleted %d message(s)", len(keys)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "Delete every stored message")
}
