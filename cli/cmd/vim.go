package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/ponyo877/roomsh/client/domain"
	"github.com/ponyo877/roomsh/client/usecase"
	"github.com/rivo/tview"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var vimCmd = &cobra.Command{
	Use:   "vim [room]",
	Short: "Opens the chat screen",
	Long: `Opens a full screen chat view with the room list on the left and the
transcript and input below. Enter sends, Tab switches between the room list
and the input, "/touch <room>" creates a room, Ctrl+C quits.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: roomCompletion,
	Run: func(cmd *cobra.Command, args []string) {
		if !application.session.Snapshot().LoggedIn() {
			fmt.Fprintln(os.Stderr, "Not logged in")
			return
		}
		if err := runChatScreen(application, roomArg(args, 0)); err != nil {
			fmt.Fprintf(os.Stderr, "Chat UI error: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(vimCmd)
}

type chatScreen struct {
	app       *tview.Application
	rooms     *tview.List
	text      *tview.TextView
	status    *tview.TextView
	input     *tview.InputField
	pane      *usecase.Pane
	directory *usecase.Directory
	session   *usecase.SessionStore
}

func runChatScreen(a *app, room string) error {
	user := a.session.User()
	name := "me"
	if user != nil {
		name = user.Username
	}

	s := &chatScreen{
		app:       tview.NewApplication(),
		rooms:     tview.NewList().ShowSecondaryText(false),
		text:      tview.NewTextView().SetDynamicColors(true).SetWordWrap(true).SetScrollable(true),
		status:    tview.NewTextView().SetDynamicColors(true),
		input:     tview.NewInputField().SetLabel(name + " ❯❯ ").SetFieldWidth(0),
		pane:      a.newPane(),
		directory: a.directory,
		session:   a.session,
	}
	defer s.pane.Close()

	s.rooms.SetBorder(true).SetTitle(" rooms ")
	s.text.SetBorder(true)
	s.input.SetAcceptanceFunc(tview.InputFieldMaxLength(1024))

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.text, 0, 1, false).
		AddItem(s.status, 1, 0, false).
		AddItem(s.input, 1, 0, true)
	root := tview.NewFlex().
		AddItem(s.rooms, 24, 0, false).
		AddItem(right, 0, 1, true)

	s.pane.OnUpdate(func() { go s.app.QueueUpdateDraw(s.render) })
	cancelWatch := s.session.Watch(func(domain.Session) { go s.app.QueueUpdateDraw(s.renderRooms) })
	defer cancelWatch()

	s.rooms.SetSelectedFunc(func(_ int, main string, _ string, _ rune) {
		s.switchRoom(main)
		s.app.SetFocus(s.input)
	})
	s.input.SetChangedFunc(s.pane.SetInput)
	s.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			s.submit()
		}
	})
	s.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			s.app.Stop()
			return nil
		case tcell.KeyTab:
			if s.input.HasFocus() {
				s.app.SetFocus(s.rooms)
			} else {
				s.app.SetFocus(s.input)
			}
			return nil
		}
		return event
	})

	s.renderRooms()
	s.switchRoom(room)
	return s.app.SetRoot(root, true).SetFocus(s.input).Run()
}

func (s *chatScreen) switchRoom(room string) {
	s.session.AddRoomIfAbsent(room)
	if err := s.pane.RoomChanged(room); err != nil {
		s.setStatus(err)
		return
	}
	if err := setCurrentRoom(room); err != nil {
		application.log.Warn().Err(err).Msg("failed to persist current room")
	}
}

func (s *chatScreen) submit() {
	text := s.input.GetText()
	if name, ok := strings.CutPrefix(strings.TrimSpace(text), "/touch "); ok {
		s.input.SetText("")
		go func() {
			ctx, cancel := application.requestContext()
			defer cancel()
			err := s.directory.Create(ctx, strings.TrimSpace(name))
			s.app.QueueUpdateDraw(func() { s.setStatus(err) })
		}()
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), application.cfg.RequestTimeout)
		defer cancel()
		err := s.pane.Send(ctx)
		s.app.QueueUpdateDraw(func() {
			s.input.SetText(s.pane.Input())
			if err != nil {
				s.setStatus(err)
			}
		})
	}()
}

func (s *chatScreen) render() {
	room := s.pane.Room()
	s.text.SetTitle(" #" + room + " ")
	s.text.Clear()
	for _, msg := range s.pane.Messages() {
		if msg.MessageType == domain.MessageTypeChat || msg.MessageType == "" {
			fmt.Fprintf(s.text, "[gray]%s[-] ", tview.Escape(formatTime(msg.Timestamp)))
			fmt.Fprintf(s.text, "[blue]%s[-]: %s\n", tview.Escape(msg.Sender()), tview.Escape(msg.Message))
			continue
		}
		fmt.Fprintf(s.text, "[yellow]* %s[-]\n", tview.Escape(msg.Message))
	}
	s.text.ScrollToEnd()
	s.setStatus(s.pane.Status())
	s.highlightRoom(room)
}

func (s *chatScreen) renderRooms() {
	current := s.pane.Room()
	s.rooms.Clear()
	for _, room := range s.session.Rooms() {
		s.rooms.AddItem(room, "", 0, nil)
	}
	s.highlightRoom(current)
}

func (s *chatScreen) highlightRoom(room string) {
	if _, i, ok := lo.FindIndexOf(s.session.Rooms(), func(r string) bool { return r == room }); ok {
		s.rooms.SetCurrentItem(i)
	}
}

func (s *chatScreen) setStatus(err error) {
	if err != nil {
		s.status.SetText("[red]" + tview.Escape(err.Error()))
		return
	}
	s.status.SetText("[green]#" + tview.Escape(s.pane.Room()))
}
