package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"userbot-tma/internal/backend"
	"userbot-tma/internal/signin"
)

const helpText = `Userbot control panel.

/login - sign the userbot account in
/back - go back one sign-in step
/cancel - abandon the sign-in
/status - show userbot status
/userbot_start - start the userbot
/userbot_stop - stop the userbot`

const (
	promptPhone    = "Enter your phone number to begin authentication (for example +1234567890)."
	promptCode     = "Enter the code you received. Telegram expires codes that are forwarded verbatim, so send it with spaces, e.g. 1 2 3 4 5."
	promptPassword = "Enter your two-step verification password. The message will be deleted after it is read."
	msgSignedIn    = "Signed in. Use /userbot_start to start the userbot."
	msgNoSession   = "No sign-in in progress. Send /login to start one."
	msgBusy        = "Still working on your previous request, please wait."
	msgPrivate     = "This bot is private."
)

// HandleMessage dispatches one incoming chat message.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	if !b.cfg.ChatAllowed(chatID) {
		b.log.Warn().Int64("chat_id", chatID).Msg("message from chat outside the allow list")
		b.reply(chatID, msgPrivate)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command())
		return
	}

	s := b.getSession(chatID)
	if s == nil {
		b.reply(chatID, msgNoSession)
		return
	}
	b.handleInput(ctx, chatID, s, msg)
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, cmd string) {
	switch cmd {
	case "start", "help":
		b.reply(chatID, helpText)
	case "login":
		b.newSession(chatID)
		b.reply(chatID, promptPhone)
	case "back":
		b.handleBack(chatID)
	case "cancel":
		if b.dropSession(chatID, nil) {
			b.reply(chatID, "Sign-in cancelled.")
			return
		}
		b.reply(chatID, msgNoSession)
	case "status":
		b.handleStatus(ctx, chatID)
	case "userbot_start":
		b.handleLifecycle(ctx, chatID, b.backend.StartUserbot)
	case "userbot_stop":
		b.handleLifecycle(ctx, chatID, b.backend.StopUserbot)
	default:
		b.reply(chatID, "Unknown command. Send /help for the list.")
	}
}

// handleInput feeds free text into the chat's sign-in according to its step.
func (b *Bot) handleInput(ctx context.Context, chatID int64, s *session, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	before := s.flow.Snapshot()
	if before.Busy {
		b.reply(chatID, msgBusy)
		return
	}

	var err error
	switch before.Step {
	case signin.StepSetup:
		err = s.flow.RequestCode(ctx, backend.Credentials{Phone: text})
	case signin.StepAwaitingCode:
		err = s.flow.SubmitCode(ctx, normalizeCode(text))
	case signin.StepAwaitingPassword:
		b.deleteMessage(chatID, msg.MessageID)
		err = s.flow.SubmitPassword(ctx, msg.Text)
	case signin.StepAuthenticated:
		b.reply(chatID, msgSignedIn)
		return
	}
	if errors.Is(err, signin.ErrBusy) {
		b.reply(chatID, msgBusy)
		return
	}

	after := s.flow.Snapshot()
	if after.Step == before.Step {
		return
	}
	if after.Step == signin.StepAuthenticated {
		b.dropSession(chatID, s)
		b.reply(chatID, msgSignedIn)
		return
	}
	b.prompt(chatID, after.Step)
}

func (b *Bot) handleBack(chatID int64) {
	s := b.getSession(chatID)
	if s == nil {
		b.reply(chatID, msgNoSession)
		return
	}
	switch err := s.flow.GoBack(); {
	case errors.Is(err, signin.ErrBusy):
		b.reply(chatID, msgBusy)
	case err != nil:
		b.reply(chatID, "Nothing to go back to. Send /cancel to abandon the sign-in.")
	default:
		b.prompt(chatID, s.flow.Snapshot().Step)
	}
}

func (b *Bot) prompt(chatID int64, step signin.Step) {
	switch step {
	case signin.StepSetup:
		b.reply(chatID, promptPhone)
	case signin.StepAwaitingCode:
		b.reply(chatID, promptCode)
	case signin.StepAwaitingPassword:
		b.reply(chatID, promptPassword)
	}
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64) {
	st, err := b.backend.Status(ctx)
	if err != nil {
		b.reply(chatID, errorText(err))
		return
	}
	b.reply(chatID, formatStatus(st))
}

func (b *Bot) handleLifecycle(ctx context.Context, chatID int64, op func(context.Context) (string, error)) {
	msg, err := op(ctx)
	if err != nil {
		b.reply(chatID, errorText(err))
		return
	}
	b.reply(chatID, msg)
}

func formatStatus(st *backend.UserbotStatus) string {
	var sb strings.Builder
	state := "stopped"
	if st.Running {
		state = "running"
	}
	fmt.Fprintf(&sb, "Userbot: %s", state)
	if u := st.UserInfo; u != nil {
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		if u.Username != "" {
			name = fmt.Sprintf("%s (@%s)", name, u.Username)
		}
		fmt.Fprintf(&sb, "\nAccount: %s", strings.TrimSpace(name))
		if u.PhoneNumber != "" {
			fmt.Fprintf(&sb, "\nPhone: %s", u.PhoneNumber)
		}
	}
	if st.Message != "" {
		fmt.Fprintf(&sb, "\n%s", st.Message)
	}
	return sb.String()
}

func errorText(err error) string {
	if detail, ok := backend.Detail(err); ok {
		return "Error: " + detail
	}
	return "Error: " + err.Error()
}

// normalizeCode keeps only the digits, so "1 2 3 4 5" and "12-345" both
// become "12345". Input without digits is passed through for the backend to
// reject.
func normalizeCode(text string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, text)
	if digits == "" {
		return text
	}
	return digits
}
