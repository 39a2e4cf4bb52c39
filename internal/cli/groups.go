package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage the groups the userbot posts to",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List target groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := newClient().ListGroups(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), groups)
		}
		rows := make([]string, len(groups))
		for i, g := range groups {
			rows[i] = fmt.Sprintf("%d\t%s\t%s", g.ID, g.Identifier, g.Name)
		}
		return printTable(cmd.OutOrStdout(), "ID\tIDENTIFIER\tNAME", rows)
	},
}

var groupsAddCmd = &cobra.Command{
	Use:   "add IDENTIFIER...",
	Short: "Add one or more groups by username, link or chat id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMessage(cmd, func(ctx context.Context) (string, error) {
			if len(args) == 1 {
				return newClient().AddGroup(ctx, args[0])
			}
			return newClient().AddGroups(ctx, args)
		})
	},
}

var groupsRemoveCmd = &cobra.Command{
	Use:     "rm IDENTIFIER",
	Aliases: []string{"remove"},
	Short:   "Remove a group",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMessage(cmd, func(ctx context.Context) (string, error) {
			return newClient().DeleteGroup(ctx, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
	groupsCmd.AddCommand(groupsListCmd, groupsAddCmd, groupsRemoveCmd)
	groupsListCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
}
