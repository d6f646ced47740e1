package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ponyo877/roomsh/client/adaptor"
	"github.com/ponyo877/roomsh/client/domain"
	"github.com/ponyo877/roomsh/client/repository"
	"github.com/ponyo877/roomsh/client/usecase"
	"github.com/rs/zerolog"
)

// app holds everything a command needs. It lives for the whole process so
// the REPL reuses one storage handle across commands.
type app struct {
	cfg       domain.Config
	log       zerolog.Logger
	logFile   *os.File
	storage   usecase.Storage
	session   *usecase.SessionStore
	auth      *usecase.Auth
	directory *usecase.Directory
	chat      usecase.ChatService
	events    *adaptor.EventSource
}

var application *app

func newApp(cfg domain.Config) (*app, error) {
	logger, logFile, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	storage, err := repository.Open(cfg)
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, fmt.Errorf("error opening %s storage: %w", cfg.Storage, err)
	}

	rest := &http.Client{Timeout: cfg.RequestTimeout}
	authClient := adaptor.NewAuthClient(cfg.AuthURL, rest, logger.With().Str("service", "auth").Logger())
	chat := adaptor.NewChatClient(cfg.ChatURL, rest, logger.With().Str("service", "chat").Logger())
	// the event stream must outlive request_timeout
	events := adaptor.NewEventSource(cfg.ChatURL, &http.Client{}, logger.With().Str("service", "events").Logger())

	session := usecase.NewSessionStore(storage, logger)
	return &app{
		cfg:       cfg,
		log:       logger,
		logFile:   logFile,
		storage:   storage,
		session:   session,
		auth:      usecase.NewAuth(authClient, chat, session, logger),
		directory: usecase.NewDirectory(chat, session, logger),
		chat:      chat,
		events:    events,
	}, nil
}

func newLogger(cfg domain.Config) (zerolog.Logger, *os.File, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("error creating log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("error opening log file: %w", err)
	}
	return zerolog.New(f).Level(level).With().Timestamp().Logger(), f, nil
}

// newPane wires a channel, a pulse and a pane for interactive use.
func (a *app) newPane() *usecase.Pane {
	channel := usecase.NewChannel(a.events, a.session, a.log)
	pulse := usecase.NewPulse(a.chat, a.session, a.cfg.HeartbeatInterval, a.log)
	return usecase.NewPane(channel, pulse, a.chat, a.session, a.log)
}

// newSendPane returns a pane that can send but never subscribes to the
// event stream.
func (a *app) newSendPane() *usecase.Pane {
	return usecase.NewPane(detached{}, detached{}, a.chat, a.session, a.log)
}

func (a *app) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
}

func (a *app) Close() error {
	var errs []error
	if a.storage != nil {
		errs = append(errs, a.storage.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}

type detached struct{}

func (detached) Bind(string)                                {}
func (detached) Unbind()                                    {}
func (detached) Subscribe(func(domain.ChannelEvent)) func() { return func() {} }
func (detached) Start(string)                               {}
func (detached) Stop()                                      {}
