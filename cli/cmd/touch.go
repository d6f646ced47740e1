package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var touchCmd = &cobra.Command{
	Use:   "touch <room...>",
	Short: "Creates rooms.",
	Long: `Creates each room on the chat service and adds it to the session.
A room that already exists is simply added.`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: roomCompletion,
	Run: func(cmd *cobra.Command, args []string) {
		for _, room := range args {
			ctx, cancel := application.requestContext()
			err := application.directory.Create(ctx, room)
			cancel()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating room %s: %v\n", room, err)
				continue
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(touchCmd)
}
