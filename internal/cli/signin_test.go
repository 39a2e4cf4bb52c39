package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userbot-tma/internal/backend"
	"userbot-tma/internal/backend/backendtest"
	"userbot-tma/internal/config"
	"userbot-tma/internal/signin"
)

func newFlow(t *testing.T, out *bytes.Buffer) (*signin.Orchestrator, *backendtest.Server) {
	t.Helper()
	srv := backendtest.New()
	t.Cleanup(srv.Close)
	client := backend.NewClient(&config.Config{APIBase: srv.BaseURL()}, zerolog.Nop())
	notifier := signin.NotifierFunc(func(_ context.Context, msg string) {
		out.WriteString(msg + "\n")
	})
	return signin.New(client, notifier, zerolog.Nop()), srv
}

func TestRunSignin_BackThenPassword(t *testing.T) {
	var out bytes.Buffer
	flow, srv := newFlow(t, &out)
	srv.FailSignIn("SessionPasswordNeeded")

	in := strings.NewReader("/back\n+15550000000\n12345\nsecret\n")
	err := runSignin(context.Background(), in, &out, flow, backend.Credentials{Phone: "+15551234567"})
	require.NoError(t, err)

	assert.Equal(t, signin.StepAuthenticated, flow.Snapshot().Step)
	calls := srv.CallsTo("/auth/send-code")
	require.Len(t, calls, 2)
	assert.Equal(t, "+15551234567", calls[0].Body["phone_number"])
	assert.Equal(t, "+15550000000", calls[1].Body["phone_number"])
	assert.Equal(t, "secret", srv.CallsTo("/auth/sign-in-password")[0].Body["password"])

	text := out.String()
	assert.Contains(t, text, signin.NoticeCodeSent)
	assert.Contains(t, text, signin.NoticePasswordRequired)
	assert.Contains(t, text, "Password: ")
	assert.True(t, strings.HasSuffix(text, "Signed in.\n"))
}

func TestRunSignin_RetriesAfterError(t *testing.T) {
	var out bytes.Buffer
	flow, srv := newFlow(t, &out)
	srv.FailSignIn("PhoneCodeInvalid")

	in := strings.NewReader("+15551234567\n11111\n")
	err := runSignin(context.Background(), in, &out, flow, backend.Credentials{})
	require.ErrorIs(t, err, errAborted)

	assert.Contains(t, out.String(), "Error: PhoneCodeInvalid")
	assert.Equal(t, 2, strings.Count(out.String(), "Verification code: "))
	v := flow.Snapshot()
	assert.Equal(t, signin.StepAwaitingCode, v.Step)
	assert.Equal(t, "abc", v.PhoneCodeHash)
}

func TestRunSignin_BackFromPhoneAborts(t *testing.T) {
	var out bytes.Buffer
	flow, srv := newFlow(t, &out)

	err := runSignin(context.Background(), strings.NewReader("/back\n"), &out, flow, backend.Credentials{})
	assert.True(t, errors.Is(err, errAborted))
	assert.Empty(t, srv.CallsTo("/auth/send-code"))
}

func TestRunSignin_EmptyPhoneIsRejectedLocally(t *testing.T) {
	var out bytes.Buffer
	flow, srv := newFlow(t, &out)

	err := runSignin(context.Background(), strings.NewReader("\n"), &out, flow, backend.Credentials{})
	require.ErrorIs(t, err, errAborted)
	assert.Contains(t, out.String(), "Error: phone number is required")
	assert.Empty(t, srv.CallsTo("/auth/send-code"))
}

func TestRunSignin_CancelledContext(t *testing.T) {
	var out bytes.Buffer
	flow, _ := newFlow(t, &out)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runSignin(ctx, strings.NewReader("+15551234567\n"), &out, flow, backend.Credentials{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTerminalFd_PipedInputIsNotATerminal(t *testing.T) {
	_, ok := terminalFd(strings.NewReader("secret\n"))
	assert.False(t, ok)

	f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	require.NoError(t, err)
	defer f.Close()
	_, ok = terminalFd(f)
	assert.False(t, ok, "a regular file keeps the line reader")
}

func TestRunSignin_PipedPasswordIsKeptVerbatim(t *testing.T) {
	var out bytes.Buffer
	flow, srv := newFlow(t, &out)
	srv.FailSignIn("SessionPasswordNeeded")

	in := strings.NewReader("12345\n pass word \r\n")
	err := runSignin(context.Background(), in, &out, flow, backend.Credentials{Phone: "+15551234567"})
	require.NoError(t, err)
	assert.Equal(t, " pass word ", srv.CallsTo("/auth/sign-in-password")[0].Body["password"])
}
