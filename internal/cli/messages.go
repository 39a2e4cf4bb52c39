package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Manage the message templates the userbot sends",
}

var messagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List message templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs, err := newClient().ListMessages(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), msgs)
		}
		rows := make([]string, len(msgs))
		for i, m := range msgs {
			rows[i] = fmt.Sprintf("%d\t%s", m.ID, preview(m.Text, 60))
		}
		return printTable(cmd.OutOrStdout(), "ID\tTEXT", rows)
	},
}

var messagesAddCmd = &cobra.Command{
	Use:   "add TEXT",
	Short: "Add a message template",
	Long:  `Adds a message template. Multiple arguments are joined with spaces.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMessage(cmd, func(ctx context.Context) (string, error) {
			return newClient().AddMessage(ctx, strings.Join(args, " "))
		})
	},
}

var messagesRemoveCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"remove"},
	Short:   "Remove a message template",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid message id %q", args[0])
		}
		return runMessage(cmd, func(ctx context.Context) (string, error) {
			return newClient().DeleteMessage(ctx, id)
		})
	},
}

func init() {
	rootCmd.AddCommand(messagesCmd)
	messagesCmd.AddCommand(messagesListCmd, messagesAddCmd, messagesRemoveCmd)
	messagesListCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
}

// preview flattens text to one line and cuts it to n runes.
func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n-3]) + "..."
}
