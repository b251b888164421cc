package cmd

import (
	"fmt"

	"github.com/mayike4315/gpt-web/internal"
	"github.com/spf13/cobra"
)

var (
	chatParams  []string
	chatNoSave  bool
	chatHistory int
)

type historyEntry struct {
	Role string `json:"role,omitempty"`
	Text string `json:"text"`
}

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat <text>",
	Short: "Send a message to the chat backend",
	Long: `Send text to the chat backend and print the reply.

The question and the reply are stored as user and assistant messages unless
--no-save is given. --history N sends the last N stored messages along with
the question. Extra request parameters are given as --param name=value.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		text := args[0]

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		params := map[string]any{"text": text}
		for _, p := range chatParams {
			name, value, err := parseAssignment(p)
			if err != nil {
				return err
			}
			params[name] = value
		}

		var store *internal.MessageStore
		if !chatNoSave || chatHistory > 0 {
			if store, _, err = openStore(); err != nil {
				return err
			}
		}

		if chatHistory > 0 {
			messages, err := store.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
			if len(messages) > chatHistory {
				messages = messages[len(messages)-chatHistory:]
			}
			history := make([]historyEntry, 0, len(messages))
			for _, msg := range messages {
				history = append(history, historyEntry{Role: msg.Role(), Text: msg.Text()})
			}
			params["history"] = history
		}

		if !chatNoSave {
			if err := saveChatMessage(cmd, store, "user", text); err != nil {
				return err
			}
		}

		resp, err := client.SendChat(ctx, params)
		if err != nil {
			return fmt.Errorf("chat request failed: %w", err)
		}

		reply := resp.Text()
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), reply)

		if !chatNoSave && reply != "" {
			if err := saveChatMessage(cmd, store, "assistant", reply); err != nil {
				return err
			}
		}
		return nil
	},
}

func saveChatMessage(cmd *cobra.Command, store *internal.MessageStore, role, text string) error {
	msg, err := internal.NewChatMessage(internal.Now(), map[string]any{"role": role, "text": text})
	if err != nil {
		return err
	}
	key, err := store.Add(cmd.Context(), msg)
	if err != nil {
		return fmt.Errorf("failed to store %s message: %w", role, err)
	}
	internal.LogDebug("Stored %s message %s", role, key)
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringArrayVar(&chatParams, "param", nil, "Extra request parameter as name=value (repeatable)")
	chatCmd.Flags().BoolVar(&chatNoSave, "no-save", false, "Do not store the question and reply")
	chatCmd.Flags().IntVar(&chatHistory, "history", 0, "Send the last N stored messages as history")
}
