package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"userbot-tma/internal/backend"
	"userbot-tma/internal/config"
	"userbot-tma/internal/logging"
)

var (
	apiBase  string
	logLevel string

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "userbot-tma",
	Short: "Control panel for the userbot backend",
	Long: `Signs the userbot account in and manages its groups, message templates,
blacklist and settings through the backend REST API. Run "userbot-tma bot" to
serve the same controls from a Telegram chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var warnings []string
		cfg, warnings = config.Load()
		if cmd.Flags().Changed("api-base") {
			cfg.APIBase = apiBase
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger = logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
		for _, w := range warnings {
			logger.Warn().Msg(w)
		}
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiBase, "api-base", config.DefaultAPIBase, "Backend API base URL (overrides USERBOT_API_BASE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (overrides LOG_LEVEL)")
}

func newClient() *backend.Client {
	return backend.NewClient(cfg, logger)
}
