package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Prints the resolved configuration.",
	Long: `Prints the configuration after merging defaults, the config file,
ROOMSH_* environment variables and flags.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printConfig(os.Stdout, application.cfg, viper.ConfigFileUsed())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func printConfig(w io.Writer, cfg domain.Config, file string) {
	if file == "" {
		file = "(none)"
	}
	fmt.Fprintf(w, "config_file:        %s\n", file)
	fmt.Fprintf(w, "auth_url:           %s\n", cfg.AuthURL)
	fmt.Fprintf(w, "chat_url:           %s\n", cfg.ChatURL)
	fmt.Fprintf(w, "storage:            %s\n", cfg.Storage)
	fmt.Fprintf(w, "data_dir:           %s\n", cfg.DataDir)
	fmt.Fprintf(w, "heartbeat_interval: %s\n", cfg.HeartbeatInterval)
	fmt.Fprintf(w, "request_timeout:    %s\n", cfg.RequestTimeout)
	fmt.Fprintf(w, "log_level:          %s\n", cfg.LogLevel)
	fmt.Fprintf(w, "log_file:           %s\n", cfg.LogFile)
}
