package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change userbot settings",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := newClient().ListSettings(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), settings)
		}
		rows := make([]string, len(settings))
		for i, s := range settings {
			rows[i] = fmt.Sprintf("%s\t%s\t%s", s.Key, s.Value, s.Description)
		}
		return printTable(cmd.OutOrStdout(), "KEY\tVALUE\tDESCRIPTION", rows)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMessage(cmd, func(ctx context.Context) (string, error) {
			return newClient().SetSetting(ctx, args[0], args[1])
		})
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsListCmd, settingsSetCmd)
	settingsListCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
}
