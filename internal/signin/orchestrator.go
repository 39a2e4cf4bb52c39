package signin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"userbot-tma/internal/backend"
	"userbot-tma/internal/logging"
)

var (
	// ErrBusy is returned while another request of the same session is in flight.
	ErrBusy = errors.New("signin: a request is already in progress")
	// ErrWrongStep is returned when an operation is not valid in the current step.
	ErrWrongStep = errors.New("signin: operation not allowed in current step")
	// ErrNoPreviousStep is returned by GoBack from Setup or Authenticated.
	ErrNoPreviousStep = errors.New("signin: no previous step")
	// ErrValidation is returned when required input is missing; no request is made.
	ErrValidation = errors.New("signin: invalid input")

	errNoPhoneCodeHash = errors.New("backend returned no phone_code_hash")
)

// Operator-facing notices.
const (
	NoticeCodeSent         = "Code sent to your phone number"
	NoticeAuthenticated    = "Authentication successful!"
	NoticePasswordRequired = "Two-factor authentication is enabled on your account. Please enter your password."
)

// AuthAPI is the subset of the backend client the flow needs.
type AuthAPI interface {
	SendCode(ctx context.Context, creds backend.Credentials) (string, error)
	SignIn(ctx context.Context, code, phoneCodeHash string) error
	SignInWithPassword(ctx context.Context, password string) error
}

// Notifier is the host capability used to alert the operator.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Notify(ctx context.Context, message string) { f(ctx, message) }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string) {}

// View is a read-only snapshot for renderers.
type View struct {
	Step          Step
	PhoneCodeHash string
	Phone         string
	LastError     string
	Busy          bool
}

// Orchestrator owns one sign-in session. It is safe for concurrent use, but
// at most one backend call per session is outstanding: calls made while one
// is in flight return ErrBusy without touching the session.
type Orchestrator struct {
	api    AuthAPI
	notify Notifier
	log    zerolog.Logger

	mu        sync.Mutex
	state     State
	creds     backend.Credentials
	lastError string
	busy      bool
}

func New(api AuthAPI, notifier Notifier, logger zerolog.Logger) *Orchestrator {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Orchestrator{
		api:    api,
		notify: notifier,
		log:    logging.Component(logger, "signin"),
		state:  Setup{},
	}
}

// State returns the current variant.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) Snapshot() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return View{
		Step:          o.state.Step(),
		PhoneCodeHash: PhoneCodeHash(o.state),
		Phone:         o.creds.Phone,
		LastError:     o.lastError,
		Busy:          o.busy,
	}
}

// RequestCode asks the backend for a verification code. On success the
// session moves to AwaitingCode holding the returned hash.
func (o *Orchestrator) RequestCode(ctx context.Context, creds backend.Credentials) error {
	creds.Phone = strings.TrimSpace(creds.Phone)

	o.mu.Lock()
	if err := o.checkLocked(StepSetup); err != nil {
		o.mu.Unlock()
		return err
	}
	if creds.Phone == "" {
		return o.rejectLocked(ctx, "phone number is required")
	}
	o.busy = true
	o.creds = creds
	o.mu.Unlock()

	hash, err := o.api.SendCode(ctx, creds)

	o.mu.Lock()
	o.busy = false
	if err != nil {
		return o.failLocked(ctx, "send code", err)
	}
	if !o.applyLocked(CodeSent{PhoneCodeHash: hash}) {
		return o.failLocked(ctx, "send code", errNoPhoneCodeHash)
	}
	o.mu.Unlock()

	o.notify.Notify(ctx, NoticeCodeSent)
	return nil
}

// SubmitCode verifies code against the hash of the latest RequestCode. A
// password-required rejection advances to AwaitingPassword and is not an
// error.
func (o *Orchestrator) SubmitCode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)

	o.mu.Lock()
	if err := o.checkLocked(StepAwaitingCode); err != nil {
		o.mu.Unlock()
		return err
	}
	// Transition only enters AwaitingCode with a non-empty hash.
	hash := PhoneCodeHash(o.state)
	if code == "" {
		return o.rejectLocked(ctx, "verification code is required")
	}
	o.busy = true
	o.mu.Unlock()

	err := o.api.SignIn(ctx, code, hash)

	o.mu.Lock()
	o.busy = false
	if err != nil {
		if reason := ClassifyError(err); !reason.NeedsPassword() {
			return o.failLocked(ctx, "sign in", err)
		}
		o.applyLocked(PasswordRequired{})
		o.mu.Unlock()
		o.notify.Notify(ctx, NoticePasswordRequired)
		return nil
	}
	o.applyLocked(CodeAccepted{})
	o.mu.Unlock()

	o.notify.Notify(ctx, NoticeAuthenticated)
	return nil
}

// SubmitPassword completes sign-in for accounts with two-step verification.
func (o *Orchestrator) SubmitPassword(ctx context.Context, password string) error {
	o.mu.Lock()
	if err := o.checkLocked(StepAwaitingPassword); err != nil {
		o.mu.Unlock()
		return err
	}
	if password == "" {
		return o.rejectLocked(ctx, "password is required")
	}
	o.busy = true
	o.mu.Unlock()

	err := o.api.SignInWithPassword(ctx, password)

	o.mu.Lock()
	o.busy = false
	if err != nil {
		return o.failLocked(ctx, "sign in with password", err)
	}
	o.applyLocked(PasswordAccepted{})
	o.mu.Unlock()

	o.notify.Notify(ctx, NoticeAuthenticated)
	return nil
}

// GoBack returns to the previous step. Leaving AwaitingCode discards the
// hash, so a new code must be requested; leaving AwaitingPassword keeps it.
func (o *Orchestrator) GoBack() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return ErrBusy
	}
	if !o.applyLocked(Back{}) {
		return ErrNoPreviousStep
	}
	return nil
}

func (o *Orchestrator) checkLocked(want Step) error {
	if o.busy {
		return ErrBusy
	}
	if o.state.Step() != want {
		return ErrWrongStep
	}
	return nil
}

// applyLocked feeds e into Transition and clears the error on a step change.
func (o *Orchestrator) applyLocked(e Event) bool {
	prev := o.state
	next, ok := Transition(prev, e)
	if !ok {
		o.log.Debug().Str("step", prev.Step().String()).Str("event", e.String()).Msg("event ignored")
		return false
	}
	o.state = next
	o.lastError = ""
	o.log.Info().
		Str("from", prev.Step().String()).
		Str("to", next.Step().String()).
		Str("event", e.String()).
		Msg("sign-in step changed")
	return true
}

// rejectLocked records a validation failure and releases the lock.
func (o *Orchestrator) rejectLocked(ctx context.Context, msg string) error {
	o.lastError = msg
	o.mu.Unlock()
	o.notify.Notify(ctx, "Error: "+msg)
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// failLocked records a failed call, keeps the current step and releases the
// lock.
func (o *Orchestrator) failLocked(ctx context.Context, op string, err error) error {
	text, notice := failureText(err)
	o.lastError = text
	step := o.state.Step()
	o.mu.Unlock()

	o.log.Warn().
		Str("step", step.String()).
		Str("reason", ClassifyError(err).String()).
		Str("detail", text).
		Msg(op + " failed")
	o.notify.Notify(ctx, notice)
	return fmt.Errorf("signin: %s: %w", op, err)
}

// failureText returns what the operator sees: the backend detail verbatim, or
// the transport error, along with the notice pushed to the host.
func failureText(err error) (text, notice string) {
	if detail, ok := backend.Detail(err); ok {
		return detail, "Error: " + detail
	}
	if backend.IsNetwork(err) {
		msg := strings.TrimPrefix(err.Error(), backend.ErrNetwork.Error()+": ")
		return msg, "Network error: " + msg
	}
	return err.Error(), "Error: " + err.Error()
}
