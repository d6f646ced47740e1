package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/spf13/cobra"
)

var idCmd = &cobra.Command{
	Use:   "id [username]",
	Short: "Prints user information.",
	Long: `Without arguments, prints the logged in user and their profile from the
user service. With a username, prints that user's profile.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var username string
		if len(args) == 1 {
			username = args[0]
		} else {
			user := application.session.User()
			if user == nil {
				fmt.Fprintln(os.Stderr, "Not logged in")
				return
			}
			fmt.Printf("uid=%d(%s) name=%q\n", user.UserID, user.Username, user.FullName)
		}

		ctx, cancel := application.requestContext()
		defer cancel()

		profile, err := application.auth.Profile(ctx, username)
		if err != nil {
			if errors.Is(err, domain.ErrNotLoggedIn) {
				fmt.Fprintln(os.Stderr, "Not logged in")
				return
			}
			fmt.Fprintf(os.Stderr, "Error fetching profile: %v\n", err)
			return
		}
		fmt.Printf("id=%d username=%s full_name=%q\n", profile.ID, profile.Username, profile.FullName)
	},
}

func init() {
	rootCmd.AddCommand(idCmd)
}
