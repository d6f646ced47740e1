package main

import "github.com/ponyo877/roomsh/cli/cmd"

func main() {
	cmd.Execute()
}
