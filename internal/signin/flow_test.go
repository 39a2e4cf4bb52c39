package signin_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userbot-tma/internal/backend"
	"userbot-tma/internal/backend/backendtest"
	"userbot-tma/internal/config"
	"userbot-tma/internal/signin"
)

func newFlow(t *testing.T) (*signin.Orchestrator, *backendtest.Server) {
	t.Helper()
	srv := backendtest.New()
	t.Cleanup(srv.Close)
	client := backend.NewClient(&config.Config{APIBase: srv.BaseURL()}, zerolog.Nop())
	return signin.New(client, nil, zerolog.Nop()), srv
}

func TestFlow_CodeThenPassword(t *testing.T) {
	o, srv := newFlow(t)
	ctx := context.Background()

	require.NoError(t, o.RequestCode(ctx, backend.Credentials{Phone: "+15551234567"}))
	v := o.Snapshot()
	assert.Equal(t, signin.StepAwaitingCode, v.Step)
	assert.Equal(t, "abc", v.PhoneCodeHash)

	srv.FailSignIn("SessionPasswordNeeded")
	require.NoError(t, o.SubmitCode(ctx, "12345"))
	v = o.Snapshot()
	assert.Equal(t, signin.StepAwaitingPassword, v.Step)
	assert.Equal(t, "abc", v.PhoneCodeHash)

	require.NoError(t, o.SubmitPassword(ctx, "secret"))
	assert.Equal(t, signin.StepAuthenticated, o.Snapshot().Step)

	require.Len(t, srv.CallsTo("/auth/sign-in"), 1)
	assert.Equal(t, "abc", srv.CallsTo("/auth/sign-in")[0].Body["phone_code_hash"])
	assert.Equal(t, "secret", srv.CallsTo("/auth/sign-in-password")[0].Body["password"])
}

func TestFlow_InvalidCodeStaysOnCodeStep(t *testing.T) {
	o, srv := newFlow(t)
	ctx := context.Background()

	require.NoError(t, o.RequestCode(ctx, backend.Credentials{Phone: "+15551234567"}))
	srv.FailSignIn("PhoneCodeInvalid")

	require.Error(t, o.SubmitCode(ctx, "00000"))
	v := o.Snapshot()
	assert.Equal(t, signin.StepAwaitingCode, v.Step)
	assert.Equal(t, "abc", v.PhoneCodeHash)
	assert.Equal(t, "PhoneCodeInvalid", v.LastError)
}

func TestFlow_BackFromCodeRequiresFreshHash(t *testing.T) {
	o, srv := newFlow(t)
	ctx := context.Background()

	require.NoError(t, o.RequestCode(ctx, backend.Credentials{Phone: "+15551234567"}))
	require.NoError(t, o.GoBack())

	srv.SetPhoneCodeHash("def")
	require.NoError(t, o.RequestCode(ctx, backend.Credentials{Phone: "+15551234567"}))
	assert.Equal(t, "def", o.Snapshot().PhoneCodeHash)

	require.NoError(t, o.SubmitCode(ctx, "12345"))
	assert.Equal(t, signin.StepAuthenticated, o.Snapshot().Step)
	assert.Len(t, srv.CallsTo("/auth/send-code"), 2)
}

func TestFlow_BusyWhileBackendHolds(t *testing.T) {
	o, srv := newFlow(t)
	ctx := context.Background()

	release := srv.Hold()
	defer release()

	done := make(chan error, 1)
	go func() { done <- o.RequestCode(ctx, backend.Credentials{Phone: "+1"}) }()

	require.Eventually(t, func() bool { return len(srv.CallsTo("/auth/send-code")) == 1 }, time.Second, time.Millisecond)
	assert.ErrorIs(t, o.RequestCode(ctx, backend.Credentials{Phone: "+1"}), signin.ErrBusy)
	assert.ErrorIs(t, o.GoBack(), signin.ErrBusy)

	release()
	require.NoError(t, <-done)
	assert.Equal(t, signin.StepAwaitingCode, o.Snapshot().Step)
	assert.Len(t, srv.CallsTo("/auth/send-code"), 1)
}
