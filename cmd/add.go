package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mayike4315/gpt-web/internal"
	"github.com/spf13/cobra"
)

var (
	addTime   string
	addText   string
	addRole   string
	addKey    string
	addFields []string
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a message",
	Long: `Store a chat message and print the key assigned to it.

--time defaults to the current time in epoch milliseconds. Numeric values
are stored as numbers, anything else as text. Extra fields are given as
name=value; values that parse as JSON keep their JSON type.

--key makes the store reject the message if that key is already taken.
The stored message always gets a newly generated key.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := make(map[string]any)
		if addText != "" {
			fields["text"] = addText
		}
		if addRole != "" {
			fields["role"] = addRole
		}
		for _, f := range addFields {
			name, value, err := parseAssignment(f)
			if err != nil {
				return err
			}
			fields[name] = value
		}

		ts := internal.ParseTimestamp(addTime)
		if ts.IsZero() {
			ts = internal.Now()
		}
		msg, err := internal.NewChatMessage(ts, fields)
		if err != nil {
			return err
		}
		if addKey != "" {
			if msg.Key, err = internal.ParseKey(addKey); err != nil {
				return err
			}
		}

		store, _, err := openStore()
		if err != nil {
			return err
		}
		key, err := store.Add(cmd.Context(), msg)
		if err != nil {
			return fmt.Errorf("failed to add message: %w", err)
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

// parseAssignment splits name=value, decoding the value as JSON when it is
// valid JSON and keeping it as a string otherwise.
func parseAssignment(s string) (string, any, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid field %q (expected name=value)", s)
	}
	if json.Valid([]byte(value)) {
		return name, json.RawMessage(value), nil
	}
	return name, value, nil
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addTime, "time", "", "Message time (epoch ms or RFC 3339), default now")
	addCmd.Flags().StringVar(&addText, "text", "", "Message text")
	addCmd.Flags().StringVar(&addRole, "role", "", "Message role (user, assistant, ...)")
	addCmd.Flags().StringVar(&addKey, "key", "", "Key the message is expected not to have yet")
	addCmd.Flags().StringArrayVar(&addFields, "field", nil, "Extra field as name=value (repeatable)")
}
