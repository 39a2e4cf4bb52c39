package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	blacklistReason   string
	blacklistDuration time.Duration
)

var blacklistCmd = &cobra.Command{
	Use:   "blacklist",
	Short: "Manage chats the userbot must skip",
}

var blacklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blacklisted chats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := newClient().ListBlacklist(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), entries)
		}
		rows := make([]string, len(entries))
		for i, e := range entries {
			expiry := "permanent"
			if !e.IsPermanent {
				expiry = "-"
				if e.ExpiryTime != nil {
					expiry = *e.ExpiryTime
				}
			}
			rows[i] = fmt.Sprintf("%s\t%s\t%s", e.ChatID, expiry, e.Reason)
		}
		return printTable(cmd.OutOrStdout(), "CHAT\tEXPIRES\tREASON", rows)
	},
}

var blacklistAddCmd = &cobra.Command{
	Use:   "add CHAT_ID",
	Short: "Blacklist a chat, permanently unless --duration is given",
	Long: `Blacklists a chat, permanently unless --duration is given. Put negative
chat ids after "--" so they are not read as flags.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var duration *int
		if cmd.Flags().Changed("duration") {
			if blacklistDuration < time.Second {
				return fmt.Errorf("--duration must be at least 1s")
			}
			d := int(blacklistDuration / time.Second)
			duration = &d
		}
		return runMessage(cmd, func(ctx context.Context) (string, error) {
			return newClient().AddBlacklist(ctx, args[0], blacklistReason, duration)
		})
	},
}

var blacklistRemoveCmd = &cobra.Command{
	Use:     "rm CHAT_ID",
	Aliases: []string{"remove"},
	Short:   "Remove a chat from the blacklist",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMessage(cmd, func(ctx context.Context) (string, error) {
			return newClient().DeleteBlacklist(ctx, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(blacklistCmd)
	blacklistCmd.AddCommand(blacklistListCmd, blacklistAddCmd, blacklistRemoveCmd)
	blacklistListCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	blacklistAddCmd.Flags().StringVar(&blacklistReason, "reason", "", "Why the chat is blacklisted")
	blacklistAddCmd.Flags().DurationVar(&blacklistDuration, "duration", 0, "Blacklist for this long (e.g. 24h) instead of permanently")
}
