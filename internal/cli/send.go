package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chat-client/internal/session"
	"chat-client/internal/transport"
)

var sendCmd = &cobra.Command{
	Use:   "send <roomID> <text>...",
	Short: "Send a message to a room",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		roomID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid room id %q", args[0])
		}
		content := strings.Join(args[1:], " ")

		tr := transport.NewSTOMP(cfg.Broker.URL, cfg.Auth.Token, cfg.Broker.Heartbeat, log)
		sess := session.New(tr, identity, log,
			session.WithReconnectDelay(cfg.Broker.ReconnectDelay),
		)
		defer sess.Disconnect()

		sent := make(chan error, 1)
		sess.Connect(func() {
			sent <- sess.SendMessage(roomID, content)
		})

		select {
		case err := <-sent:
			return err
		case <-time.After(10 * time.Second):
			return fmt.Errorf("timed out connecting to broker")
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
