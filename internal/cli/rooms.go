package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List the current user's chat rooms",
	RunE: func(cmd *cobra.Command, args []string) error {
		rooms, err := apiClient.ListRooms(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tUNREAD\tLAST MESSAGE")
		for _, room := range rooms {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n",
				room.ID, room.DisplayName(identity.UserID), room.UnreadCount, room.RecentMessage)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(roomsCmd)
}
