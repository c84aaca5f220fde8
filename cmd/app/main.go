// File: cmd/app/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// set by -ldflags at build time
var buildVersion = "dev"

var (
	cfgPath string
	devMode bool
)

var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Conversational AI bridge for WhatsApp and Telegram",
	Long: `bridge answers chat messages with an AI model.

Twilio delivers WhatsApp messages to the webhook, Telegram is long-polled
when a bot token is configured. Every user keeps a short in-memory history
and may ask for an answer in one of five styles.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "developer mode (console logs, unredacted senders)")

	rootCmd.AddCommand(serveCmd, tokenCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
