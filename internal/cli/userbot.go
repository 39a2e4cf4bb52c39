package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the userbot is running and which account it uses",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := newClient().Status(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, st)
		}
		state := "stopped"
		if st.Running {
			state = "running"
		}
		fmt.Fprintf(out, "Userbot: %s\n", state)
		if u := st.UserInfo; u != nil {
			fmt.Fprintf(out, "Account: %s %s (@%s, id %d)\n", u.FirstName, u.LastName, u.Username, u.ID)
			fmt.Fprintf(out, "Phone:   %s\n", u.PhoneNumber)
		}
		if st.Message != "" {
			fmt.Fprintln(out, st.Message)
		}
		return nil
	},
}

var userbotCmd = &cobra.Command{
	Use:   "userbot",
	Short: "Start or stop the userbot",
}

var userbotStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the userbot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMessage(cmd, func(ctx context.Context) (string, error) {
			return newClient().StartUserbot(ctx)
		})
	},
}

var userbotStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the userbot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMessage(cmd, func(ctx context.Context) (string, error) {
			return newClient().StopUserbot(ctx)
		})
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().Health(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "OK")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, userbotCmd, healthCmd)
	userbotCmd.AddCommand(userbotStartCmd, userbotStopCmd)
	statusCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
}

// runMessage prints the confirmation message returned by a mutating call.
func runMessage(cmd *cobra.Command, op func(ctx context.Context) (string, error)) error {
	msg, err := op(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
