package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	authURLKey           = "auth_url"
	chatURLKey           = "chat_url"
	storageKey           = "storage"
	dataDirKey           = "data_dir"
	heartbeatIntervalKey = "heartbeat_interval"
	requestTimeoutKey    = "request_timeout"
	logLevelKey          = "log_level"
	logFileKey           = "log_file"
	currentRoomKey       = "current_room"
	ephemeralKey         = "ephemeral"
)

var rootCmd = &cobra.Command{
	Use:   "roomsh",
	Short: "A terminal client for room based chat",
	Long: `roomsh logs in to a chat service, keeps a list of known rooms and
follows one room at a time over a server-sent event stream.

Run without arguments to enter the interactive shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return ensureApp()
	},
}

// Execute runs a single command when arguments are given and the REPL
// otherwise.
func Execute() {
	defer closeApp()

	if len(os.Args) > 1 {
		if err := rootCmd.Execute(); err != nil {
			closeApp()
			os.Exit(1)
		}
		return
	}
	initConfig()
	if err := ensureApp(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	runREPL()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.roomsh.yaml)")
	flags.String("auth-url", domain.DefaultAuthURL, "base URL of the user service")
	flags.String("chat-url", domain.DefaultChatURL, "base URL of the chat service")
	flags.String("storage", string(domain.StorageFile), "session storage: file, sqlite or pebble")
	flags.String("data-dir", "", "directory for session data and logs (default is $HOME/.roomsh)")
	flags.String("log-level", domain.DefaultLogLevel, "log level")
	flags.Bool("ephemeral", false, "keep the session in memory only")

	viper.BindPFlag(authURLKey, flags.Lookup("auth-url"))
	viper.BindPFlag(chatURLKey, flags.Lookup("chat-url"))
	viper.BindPFlag(storageKey, flags.Lookup("storage"))
	viper.BindPFlag(dataDirKey, flags.Lookup("data-dir"))
	viper.BindPFlag(logLevelKey, flags.Lookup("log-level"))
	viper.BindPFlag(ephemeralKey, flags.Lookup("ephemeral"))
	viper.SetDefault(heartbeatIntervalKey, domain.DefaultHeartbeatInterval)
	viper.SetDefault(requestTimeoutKey, domain.DefaultRequestTimeout)
	viper.SetDefault(currentRoomKey, domain.DefaultRoom)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".roomsh")
	}

	viper.SetEnvPrefix("ROOMSH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

func loadConfig() domain.Config {
	home, _ := os.UserHomeDir()
	cfg := domain.Config{
		AuthURL:           viper.GetString(authURLKey),
		ChatURL:           viper.GetString(chatURLKey),
		Storage:           domain.StorageKind(viper.GetString(storageKey)),
		DataDir:           viper.GetString(dataDirKey),
		HeartbeatInterval: viper.GetDuration(heartbeatIntervalKey),
		RequestTimeout:    viper.GetDuration(requestTimeoutKey),
		LogLevel:          viper.GetString(logLevelKey),
		LogFile:           viper.GetString(logFileKey),
	}
	if viper.GetBool(ephemeralKey) {
		cfg.Storage = domain.StorageMemory
	}
	return cfg.Sanitize(home)
}

func ensureApp() error {
	if application != nil {
		return nil
	}
	a, err := newApp(loadConfig())
	if err != nil {
		return err
	}
	application = a
	return nil
}

func closeApp() {
	if application == nil {
		return
	}
	if err := application.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "Error closing session:", err)
	}
	application = nil
}

// currentRoom is the room the shell is "in", persisted in the config file.
func currentRoom() string {
	room := strings.TrimSpace(viper.GetString(currentRoomKey))
	if room == "" {
		return domain.DefaultRoom
	}
	return room
}

func setCurrentRoom(room string) error {
	viper.Set(currentRoomKey, room)
	if err := viper.WriteConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && viper.ConfigFileUsed() != "" {
			return fmt.Errorf("error writing config file: %w", err)
		}
		path := cfgFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = filepath.Join(home, ".roomsh.yaml")
		}
		if err := viper.WriteConfigAs(path); err != nil {
			return fmt.Errorf("error creating config file: %w", err)
		}
	}
	return nil
}

// resetFlags restores every flag to its default so values do not leak
// between REPL commands.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
