package domain

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfig_SanitizeFillsDefaults(t *testing.T) {
	cfg := Config{
		AuthURL:           " http://auth.local/ ",
		Storage:           "redis",
		HeartbeatInterval: -time.Second,
	}.Sanitize("/home/alice")

	require.Equal(t, "http://auth.local", cfg.AuthURL)
	require.Equal(t, DefaultChatURL, cfg.ChatURL)
	require.Equal(t, StorageFile, cfg.Storage)
	require.Equal(t, filepath.Join("/home/alice", ".roomsh"), cfg.DataDir)
	require.Equal(t, DefaultHeartbeatInterval, cfg.HeartbeatInterval)
	require.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	require.Equal(t, filepath.Join(cfg.DataDir, "roomsh.log"), cfg.LogFile)
}

func TestConfig_SanitizeKeepsValidValues(t *testing.T) {
	in := Config{
		AuthURL:           "http://a",
		ChatURL:           "http://c",
		Storage:           StoragePebble,
		DataDir:           "/tmp/x",
		HeartbeatInterval: time.Second,
		RequestTimeout:    2 * time.Second,
		LogLevel:          "debug",
		LogFile:           "/tmp/x/log",
	}
	require.Equal(t, in, in.Sanitize("/home/alice"))
}
