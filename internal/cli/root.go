package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chat-client/internal/api"
	"chat-client/internal/config"
	"chat-client/internal/session"
	"chat-client/pkg/logger"
)

var (
	cfg       *config.Config
	log       *logger.Logger
	identity  session.Identity
	apiClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:           "chatcli",
	Short:         "Terminal client for the chat realtime engine",
	Long:          "chatcli drives the chat session engine from a terminal: list rooms,\ntail a room's live message stream, or send a message.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		log = logger.New(cfg.Log.Level)

		identity, err = session.IdentityFromToken(cfg.Auth.Token)
		if err != nil {
			return err
		}
		apiClient = api.NewClient(cfg.API.BaseURL, cfg.Auth.Token, cfg.API.Timeout, log)
		return nil
	},
}

// Execute runs the CLI. It only needs to happen once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("broker-url", "", "STOMP-over-WebSocket broker endpoint")
	flags.String("api-url", "", "REST API base URL")
	flags.String("token", "", "bearer token for the current user")
	flags.String("log-level", "", "log level (debug|info|warn|error)")

	// Flags override the CHAT_* environment the config loader reads.
	_ = viper.BindPFlag("CHAT_BROKER_URL", flags.Lookup("broker-url"))
	_ = viper.BindPFlag("CHAT_API_URL", flags.Lookup("api-url"))
	_ = viper.BindPFlag("CHAT_TOKEN", flags.Lookup("token"))
	_ = viper.BindPFlag("CHAT_LOG_LEVEL", flags.Lookup("log-level"))
}
