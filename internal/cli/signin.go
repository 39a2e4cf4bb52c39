package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"userbot-tma/internal/backend"
	"userbot-tma/internal/signin"
)

const backCommand = "/back"

var errAborted = errors.New("sign-in aborted")

var (
	phone   string
	apiID   string
	apiHash string
)

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign the userbot account in interactively",
	Long: `Requests a verification code for the account's phone number, then asks
for the code and, when two-step verification is enabled, the password.
Type /back at a prompt to return to the previous step.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		notifier := signin.NotifierFunc(func(_ context.Context, msg string) {
			fmt.Fprintln(out, msg)
		})
		flow := signin.New(newClient(), notifier, logger)
		creds := backend.Credentials{Phone: phone, APIID: apiID, APIHash: apiHash}
		return runSignin(ctx, cmd.InOrStdin(), out, flow, creds)
	},
}

func init() {
	rootCmd.AddCommand(signinCmd)
	signinCmd.Flags().StringVar(&phone, "phone", "", "Phone number of the account (prompted if empty)")
	signinCmd.Flags().StringVar(&apiID, "api-id", "", "Telegram API id (not sent to the backend)")
	signinCmd.Flags().StringVar(&apiHash, "api-hash", "", "Telegram API hash (not sent to the backend)")
}

// terminalFd returns the descriptor of in when it is an interactive terminal.
func terminalFd(in io.Reader) (int, bool) {
	f, ok := in.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// runSignin drives flow from line-oriented input until it is authenticated.
// Failures are reported through the flow's notifier and the prompt repeats.
// On a terminal the password is read without echo.
func runSignin(ctx context.Context, in io.Reader, out io.Writer, flow *signin.Orchestrator, creds backend.Credentials) error {
	sc := bufio.NewScanner(in)
	scan := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("%w: end of input", errAborted)
		}
		return strings.TrimRight(sc.Text(), "\r"), nil
	}
	read := func(prompt string) (string, error) {
		line, err := scan(prompt)
		return strings.TrimSpace(line), err
	}
	readSecret := scan
	if fd, ok := terminalFd(in); ok {
		readSecret = func(prompt string) (string, error) {
			fmt.Fprint(out, prompt)
			pw, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			if err != nil {
				return "", err
			}
			return string(pw), nil
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch flow.Snapshot().Step {
		case signin.StepSetup:
			p := creds.Phone
			creds.Phone = ""
			if p == "" {
				if p, err = read("Phone number: "); err != nil {
					return err
				}
			}
			if p == backCommand {
				return errAborted
			}
			err = flow.RequestCode(ctx, backend.Credentials{Phone: p, APIID: creds.APIID, APIHash: creds.APIHash})
		case signin.StepAwaitingCode:
			var code string
			if code, err = read("Verification code: "); err != nil {
				return err
			}
			if code == backCommand {
				err = flow.GoBack()
				break
			}
			err = flow.SubmitCode(ctx, code)
		case signin.StepAwaitingPassword:
			var pw string
			if pw, err = readSecret("Password: "); err != nil {
				return err
			}
			if pw == backCommand {
				err = flow.GoBack()
				break
			}
			err = flow.SubmitPassword(ctx, pw)
		case signin.StepAuthenticated:
			fmt.Fprintln(out, "Signed in.")
			return nil
		}
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
