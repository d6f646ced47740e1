package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var cdCmd = &cobra.Command{
	Use:   "cd [room]",
	Short: "Changes the current room.",
	Long: `Changes the room used by echo, tail and vim when no room is given.
Without an argument it changes to the lobby. The room must be known to the
session; create it with touch or fetch it with ls --remote.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: roomCompletion,
	Run: func(cmd *cobra.Command, args []string) {
		target := domain.DefaultRoom
		if len(args) == 1 {
			target = args[0]
		}
		if strings.TrimSpace(target) == "" {
			fmt.Fprintln(os.Stderr, domain.ErrEmptyRoomName)
			return
		}
		if target != domain.DefaultRoom && !lo.Contains(application.session.Rooms(), target) {
			fmt.Fprintf(os.Stderr, "No such room: %s\n", target)
			return
		}
		if err := setCurrentRoom(target); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	},
}

var pwdCmd = &cobra.Command{
	Use:   "pwd",
	Short: "Prints the current room.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(currentRoom())
	},
}

func init() {
	rootCmd.AddCommand(cdCmd, pwdCmd)
}

// roomArg returns args[i] when present and the current room otherwise.
func roomArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return currentRoom()
}
