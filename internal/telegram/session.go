package telegram

import (
	"context"

	"userbot-tma/internal/signin"
)

// session is the sign-in state of one chat. It lives from /login until the
// flow completes, /cancel, or a new /login.
type session struct {
	flow *signin.Orchestrator
}

// chatNotifier is the host bridge for one chat: alerts become messages.
type chatNotifier struct {
	b      *Bot
	chatID int64
}

func (n chatNotifier) Notify(_ context.Context, message string) {
	n.b.reply(n.chatID, message)
}

func (b *Bot) getSession(chatID int64) *session {
	b.smux.RLock()
	defer b.smux.RUnlock()
	return b.sess[chatID]
}

// newSession replaces any session the chat had with a fresh one in Setup.
func (b *Bot) newSession(chatID int64) *session {
	l := b.root.With().Int64("chat_id", chatID).Logger()
	s := &session{flow: signin.New(b.backend, chatNotifier{b: b, chatID: chatID}, l)}
	b.smux.Lock()
	b.sess[chatID] = s
	b.smux.Unlock()
	return s
}

// dropSession forgets the chat's session if it is still s.
func (b *Bot) dropSession(chatID int64, s *session) bool {
	b.smux.Lock()
	defer b.smux.Unlock()
	cur, ok := b.sess[chatID]
	if !ok || (s != nil && cur != s) {
		return false
	}
	delete(b.sess, chatID)
	return true
}
