package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"userbot-tma/internal/backend"
	"userbot-tma/internal/config"
	"userbot-tma/internal/logging"
	"userbot-tma/internal/signin"
)

// Backend is what the bot needs from the userbot REST API.
type Backend interface {
	signin.AuthAPI
	Status(ctx context.Context) (*backend.UserbotStatus, error)
	StartUserbot(ctx context.Context) (string, error)
	StopUserbot(ctx context.Context) (string, error)
}

// sender is the part of tgbotapi.BotAPI the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	cfg     *config.Config
	bot     *tgbotapi.BotAPI
	api     sender
	backend Backend
	log     zerolog.Logger
	root    zerolog.Logger

	smux sync.RWMutex
	sess map[int64]*session // by Telegram chat ID
}

func NewBot(cfg *config.Config, be Backend, logger zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, err
	}
	api.Debug = false
	b := newBot(cfg, api, be, logger)
	b.bot = api
	b.log.Info().Str("username", api.Self.UserName).Msg("authorized on telegram")
	return b, nil
}

func newBot(cfg *config.Config, api sender, be Backend, logger zerolog.Logger) *Bot {
	return &Bot{
		cfg:     cfg,
		api:     api,
		backend: be,
		log:     logging.Component(logger, "telegram"),
		root:    logger,
		sess:    make(map[int64]*session),
	}
}

// Run long-polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	updCfg := tgbotapi.NewUpdate(0)
	updCfg.Timeout = 60
	updates := b.bot.GetUpdatesChan(updCfg)

	err := b.serve(ctx, updates)
	if ctx.Err() != nil {
		b.bot.StopReceivingUpdates()
	}
	return err
}

// serve dispatches updates until the channel closes or ctx is done. Messages
// of one chat are handled in the order they arrived; chats do not wait on
// each other. Queued messages are drained before serve returns.
func (b *Bot) serve(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	q := newChatQueue(b.HandleMessage)
	defer q.wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if u.Message == nil || u.Message.Chat == nil { // ignore non-message updates
				continue
			}
			q.push(ctx, u.Message)
		}
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
	}
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("could not delete message")
	}
}
