package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var lsRemote bool

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Lists known rooms.",
	Long: `Lists the rooms in the session, marking the current one with '*'.
With --remote the list is first merged with the rooms on the chat service.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rooms := application.directory.Rooms()
		if lsRemote {
			ctx, cancel := application.requestContext()
			defer cancel()
			synced, err := application.directory.Sync(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error listing remote rooms: %v\n", err)
			} else {
				rooms = synced
			}
		}
		if len(rooms) == 0 {
			fmt.Println("No rooms yet. Log in or create one with touch.")
			return
		}
		printRooms(os.Stdout, rooms, currentRoom())
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().BoolVarP(&lsRemote, "remote", "r", false, "merge rooms from the chat service first")
}

func printRooms(w io.Writer, rooms []string, current string) {
	for _, room := range rooms {
		mark := " "
		if room == current {
			mark = "*"
		}
		fmt.Fprintf(w, "%s #%s\n", mark, room)
	}
}
