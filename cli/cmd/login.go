package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Logs in and stores the session token.",
	Long: `Authenticates against the user service. The token and the room list
are kept in the configured session storage until logout.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		password, err := passwordFlag(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error reading password:", err)
			return
		}

		ctx, cancel := application.requestContext()
		defer cancel()

		user, err := application.auth.Login(ctx, args[0], password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Login failed: %v\n", err)
			return
		}
		fmt.Printf("Logged in as %s\n", user)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <full_name> <username>",
	Short: "Creates an account and logs in.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		password, err := passwordFlag(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error reading password:", err)
			return
		}

		ctx, cancel := application.requestContext()
		defer cancel()

		user, err := application.auth.Register(ctx, args[0], args[1], password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Registration failed: %v\n", err)
			return
		}
		fmt.Printf("Registered and logged in as %s\n", user)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forgets the session token and the room list.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		application.auth.Logout()
		fmt.Println("Logged out")
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd)
	loginCmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
	registerCmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
}

func passwordFlag(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password != "" {
		return password, nil
	}
	fmt.Print("Password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		return string(b), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}
