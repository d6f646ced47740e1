package cmd

import (
	"fmt"
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/mattn/go-shellwords"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func runREPL() {
	fmt.Println("entering interactive mode, type 'exit' to quit")
	p := prompt.New(
		executeLine,
		complete,
		prompt.OptionTitle("roomsh"),
		prompt.OptionLivePrefix(livePrefix),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			in = strings.TrimSpace(in)
			return breakline && (in == "exit" || in == "quit")
		}),
	)
	p.Run()
}

func livePrefix() (string, bool) {
	user := "guest"
	if application != nil {
		if u := application.session.User(); u != nil {
			user = u.Username
		}
	}
	return fmt.Sprintf("%s #%s ❯❯❯ ", user, currentRoom()), true
}

func executeLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" || line == "exit" || line == "quit" {
		return
	}
	args, err := shellwords.Parse(line)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error parsing input:", err)
		return
	}
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	// cobra already reported the error
	_ = rootCmd.Execute()
}

// roomCommands take room names as positional arguments.
var roomCommands = map[string]bool{
	"cd": true, "echo": true, "tail": true, "vim": true, "touch": true,
}

func complete(d prompt.Document) []prompt.Suggest {
	before := d.TextBeforeCursor()
	fields := strings.Fields(before)
	word := d.GetWordBeforeCursor()

	if len(fields) == 0 || (len(fields) == 1 && word != "") {
		return prompt.FilterHasPrefix(commandSuggestions(rootCmd), word, true)
	}
	if !roomCommands[fields[0]] || application == nil {
		return nil
	}
	rooms := lo.Map(application.session.Rooms(), func(r string, _ int) prompt.Suggest {
		return prompt.Suggest{Text: r}
	})
	return prompt.FilterHasPrefix(rooms, word, true)
}

func commandSuggestions(root *cobra.Command) []prompt.Suggest {
	cmds := lo.Filter(root.Commands(), func(c *cobra.Command, _ int) bool {
		return c.IsAvailableCommand()
	})
	return lo.Map(cmds, func(c *cobra.Command, _ int) prompt.Suggest {
		return prompt.Suggest{Text: c.Name(), Description: c.Short}
	})
}

// roomCompletion completes room names for cobra's shell completion.
func roomCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if err := ensureApp(); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	rooms := lo.Filter(application.session.Rooms(), func(r string, _ int) bool {
		return strings.HasPrefix(r, toComplete) && !lo.Contains(args, r)
	})
	return rooms, cobra.ShellCompDirectiveNoFileComp
}
