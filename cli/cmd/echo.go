package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var echoCmd = &cobra.Command{
	Use:   "echo <text> [room]",
	Short: "Sends a message to a room.",
	Long: `Sends text to the given room, or to the current room. The message shows
up for everyone following the room, including this client's tail and vim.`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: roomCompletion,
	Run: func(cmd *cobra.Command, args []string) {
		pane := application.newSendPane()
		defer pane.Close()

		room := roomArg(args, 1)
		if err := pane.RoomChanged(room); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}

		ctx, cancel := application.requestContext()
		defer cancel()

		pane.SetInput(args[0])
		if err := pane.Send(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error sending to %s: %v\n", room, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(echoCmd)
}
