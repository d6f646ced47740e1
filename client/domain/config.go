package domain

import (
	"path/filepath"
	"strings"
	"time"
)

type StorageKind string

const (
	StorageFile   StorageKind = "file"
	StorageSQLite StorageKind = "sqlite"
	StoragePebble StorageKind = "pebble"
	StorageMemory StorageKind = "memory"
)

const (
	DefaultAuthURL           = "http://localhost:3000"
	DefaultChatURL           = "http://localhost:8000"
	DefaultHeartbeatInterval = 5 * time.Second
	DefaultRequestTimeout    = 10 * time.Second
	DefaultLogLevel          = "info"
)

// Config holds the resolved client settings.
type Config struct {
	AuthURL           string
	ChatURL           string
	Storage           StorageKind
	DataDir           string
	HeartbeatInterval time.Duration
	RequestTimeout    time.Duration
	LogLevel          string
	LogFile           string
}

func DefaultConfig(home string) Config {
	dataDir := filepath.Join(home, ".roomsh")
	return Config{
		AuthURL:           DefaultAuthURL,
		ChatURL:           DefaultChatURL,
		Storage:           StorageFile,
		DataDir:           dataDir,
		HeartbeatInterval: DefaultHeartbeatInterval,
		RequestTimeout:    DefaultRequestTimeout,
		LogLevel:          DefaultLogLevel,
		LogFile:           filepath.Join(dataDir, "roomsh.log"),
	}
}

// Sanitize fills zero or invalid fields from DefaultConfig.
func (c Config) Sanitize(home string) Config {
	def := DefaultConfig(home)

	c.AuthURL = strings.TrimRight(strings.TrimSpace(c.AuthURL), "/")
	if c.AuthURL == "" {
		c.AuthURL = def.AuthURL
	}
	c.ChatURL = strings.TrimRight(strings.TrimSpace(c.ChatURL), "/")
	if c.ChatURL == "" {
		c.ChatURL = def.ChatURL
	}

	switch c.Storage {
	case StorageFile, StorageSQLite, StoragePebble, StorageMemory:
	default:
		c.Storage = def.Storage
	}

	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = def.HeartbeatInterval
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "roomsh.log")
	}
	return c
}
