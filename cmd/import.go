package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/mayike4315/gpt-web/internal"
	"github.com/mayike4315/gpt-web/internal/export"
	"github.com/spf13/cobra"
)

var (
	importKeepKeys       bool
	importSkipDuplicates bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import messages from an export",
	Long: `Add the messages of a jsonl, json or yaml export to the store.

Imported messages get new keys. With --keep-keys a message whose key is
already present in the store is skipped instead of stored again. With
--skip-duplicates messages whose time and fields match a stored message
are skipped as well.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		ctx := cmd.Context()

		store, _, err := openStore()
		if err != nil {
			return err
		}

		var messages []internal.ChatMessage
		var added, skipped, duplicates int
		steps := []internal.ProgressStep{
			{
				Message: fmt.Sprintf("Reading %s...", name),
				Fn: func() error {
					f, err := os.Open(name)
					if err != nil {
						return fmt.Errorf("failed to open %s: %w", name, err)
					}
					defer func() { _ = f.Close() }()

					messages, err = export.ReadMessages(f, name)
					return err
				},
			},
		}
		if importSkipDuplicates {
			steps = append(steps, internal.ProgressStep{
				Message: "Checking for duplicates...",
				Fn: func() error {
					existing, err := store.List(ctx)
					if err != nil {
						return err
					}
					unique := internal.NewDeduplicator(existing...).Deduplicate(messages)
					duplicates = len(messages) - len(unique)
					messages = unique
					return nil
				},
			})
		}
		steps = append(steps, internal.ProgressStep{
			Message: "Importing messages...",
			Fn: func() error {
				for i, msg := range messages {
					if !importKeepKeys {
						msg.Key = 0
					}
					if _, err := store.Add(ctx, msg); err != nil {
						var dup *internal.DuplicateKeyError
						if errors.As(err, &dup) {
							internal.LogDebug("Skipping message %d: %v", i+1, err)
							skipped++
							continue
						}
						return fmt.Errorf("failed to import message %d: %w", i+1, err)
					}
					added++
				}
				return nil
			},
		})

		if err := internal.ShowProgressWithSteps(ctx, steps); err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Imported %d message(s)", added))
		if skipped > 0 {
			internal.PrintWarning(cmd.OutOrStdout(), fmt.Sprintf("Skipped %d message(s) with existing keys", skipped))
		}
		if duplicates > 0 {
			internal.PrintWarning(cmd.OutOrStdout(), fmt.Sprintf("Skipped %d duplicate message(s)", duplicates))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importKeepKeys, "keep-keys", false, "Skip messages whose key already exists")
	importCmd.Flags().BoolVar(&importSkipDuplicates, "skip-duplicates", false, "Skip messages already stored with the same content")
}
