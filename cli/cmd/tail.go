package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/ponyo877/roomsh/client/usecase"
	"github.com/spf13/cobra"
)

var tailCmd = &cobra.Command{
	Use:   "tail [room]",
	Short: "Follows a room until interrupted.",
	Long: `Subscribes to the room's event stream and prints each message as it
arrives. Presence heartbeats are sent while it runs. Stop with Ctrl+C.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: roomCompletion,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		pane := application.newPane()
		defer pane.Close()

		t := &tailer{out: os.Stdout, errOut: os.Stderr, pane: pane}
		pane.OnUpdate(t.flush)

		room := roomArg(args, 0)
		if err := pane.RoomChanged(room); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		fmt.Fprintf(os.Stderr, "following #%s (Ctrl+C to stop)\n", room)
		<-ctx.Done()
	},
}

func init() {
	rootCmd.AddCommand(tailCmd)
}

// tailer prints the messages and status changes the pane has not shown yet.
type tailer struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	pane    *usecase.Pane
	printed int
	status  string
}

func (t *tailer) flush() {
	t.mu.Lock()
	defer t.mu.Unlock()

	msgs := t.pane.Messages()
	if t.printed > len(msgs) {
		t.printed = 0
	}
	for _, msg := range msgs[t.printed:] {
		fmt.Fprintln(t.out, formatMessage(msg))
	}
	t.printed = len(msgs)

	var status string
	if err := t.pane.Status(); err != nil {
		status = err.Error()
	}
	if status != t.status && status != "" {
		fmt.Fprintln(t.errOut, "!", status)
	}
	t.status = status
}

func formatMessage(msg domain.ChatMessage) string {
	return fmt.Sprintf("[%s] %s: %s", formatTime(msg.Timestamp), msg.Sender(), msg.Message)
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).Format("15:04:05")
}
