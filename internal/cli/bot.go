package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"userbot-tma/internal/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Serve the control panel as a Telegram bot",
	Long: `Long-polls the Telegram Bot API with TELEGRAM_BOT_TOKEN and lets the chats in
ALLOWED_CHAT_IDS sign the userbot in and start or stop it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateBot(); err != nil {
			return err
		}
		b, err := telegram.NewBot(cfg, newClient(), logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info().Msg("bot started")
		if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info().Msg("bot stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}
