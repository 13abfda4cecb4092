package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"chat-client/internal/models"
	"chat-client/internal/session"
	"chat-client/internal/transport"
)

var tailHistory int

var tailCmd = &cobra.Command{
	Use:   "tail <roomID>",
	Short: "Follow a room's live message stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roomID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid room id %q", args[0])
		}

		tr := transport.NewSTOMP(cfg.Broker.URL, cfg.Auth.Token, cfg.Broker.Heartbeat, log)
		sess := session.New(tr, identity, log,
			session.WithReconnectDelay(cfg.Broker.ReconnectDelay),
			session.WithOnMessage(printMessage),
		)
		defer sess.Disconnect()

		if history, err := apiClient.ListMessages(cmd.Context(), roomID, 0, tailHistory); err == nil {
			sess.SeedHistory(roomID, history)
			for _, msg := range sess.Messages(roomID) {
				printMessage(msg)
			}
		} else {
			log.Warn("history fetch failed", "roomId", roomID, "error", err)
		}

		// Subscriptions queue until the connection is up, so ordering with
		// Connect does not matter.
		sess.JoinRoom(roomID)
		sess.SubscribeUpdates()
		sess.Connect(func() {
			sess.OpenRoom(roomID)
			log.Info("connected", "roomId", roomID)
		})

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		return nil
	},
}

func printMessage(msg models.Message) {
	switch msg.Type {
	case models.MessageTypeDeleted:
		fmt.Printf("%s  %s  (deleted)\n", msg.CreatedAt.Format("15:04:05"), msg.SenderName)
	case models.MessageTypeSystem:
		fmt.Printf("%s  * %s\n", msg.CreatedAt.Format("15:04:05"), msg.Content)
	default:
		fmt.Printf("%s  %s: %s\n", msg.CreatedAt.Format("15:04:05"), msg.SenderName, msg.Content)
	}
}

func init() {
	tailCmd.Flags().IntVar(&tailHistory, "history", 20, "number of history messages to load first")
	rootCmd.AddCommand(tailCmd)
}
