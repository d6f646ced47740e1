package adaptor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"net/http"
	"net/url"
	"sync"

	"github.com/ponyo877/roomsh/client/usecase"
	"github.com/rs/zerolog"
	"github.com/tmaxmax/go-sse"
)

// EventSource opens the chat service's server-sent event stream.
type EventSource struct {
	requester
}

// NewEventSource expects a client without an overall timeout; the stream
// lives until its context is cancelled.
func NewEventSource(baseURL string, client *http.Client, log zerolog.Logger) *EventSource {
	return &EventSource{requester{baseURL: baseURL, http: client, log: log}}
}

func (e *EventSource) Open(ctx context.Context, token, room string) (usecase.EventStream, error) {
	path := "/events"
	if room != "" {
		path += "?" + url.Values{"room": {room}}.Encode()
	}
	req, err := e.newRequest(ctx, http.MethodGet, path, nil, "", token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := e.do(req, false)
	if err != nil {
		return nil, err
	}
	return newEventStream(resp.Body), nil
}

// maxEventSize bounds a single event so one endless line cannot grow memory
// without limit.
const maxEventSize = 1 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type eventStream struct {
	body io.ReadCloser
	next func() (sse.Event, error, bool)
	stop func()

	mu        sync.Mutex
	closeOnce sync.Once
	stopOnce  sync.Once
}

func newEventStream(body io.ReadCloser) *eventStream {
	events := sse.Read(skipBOM(body), &sse.ReadConfig{MaxEventSize: maxEventSize})
	next, stop := iter.Pull2(iter.Seq2[sse.Event, error](events))
	return &eventStream{body: body, next: next, stop: stop}
}

// Next blocks until a "message" event arrives and returns its data. Other
// event types are skipped. The end of the stream, including an event cut off
// by it, is reported as io.EOF.
func (s *eventStream) Next() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		ev, err, ok := s.next()
		if !ok {
			s.release()
			return nil, io.EOF
		}
		if err != nil {
			s.release()
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, io.EOF
			}
			return nil, err
		}
		if ev.Type != "" && ev.Type != "message" {
			continue
		}
		return []byte(ev.Data), nil
	}
}

func (s *eventStream) release() {
	s.stopOnce.Do(s.stop)
}

// Close may run while Next is blocked: closing the body unblocks the read
// before the iterator is released.
func (s *eventStream) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.body.Close() })
	s.mu.Lock()
	s.release()
	s.mu.Unlock()
	return err
}

// bomReader drops a leading UTF-8 byte order mark. The check waits for the
// first Read so opening the stream never blocks on the body.
type bomReader struct {
	r       *bufio.Reader
	checked bool
}

func skipBOM(r io.Reader) io.Reader {
	return &bomReader{r: bufio.NewReader(r)}
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		if prefix, err := b.r.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
			_, _ = b.r.Discard(len(utf8BOM))
		}
	}
	return b.r.Read(p)
}
