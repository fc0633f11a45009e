package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agehasite/internal/config"
	appLog "agehasite/internal/log"
)

var (
	// Global flags
	configPath string
	debug      bool

	// conf is loaded once in PersistentPreRunE.
	conf *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "agehasite",
	Short: "おばんざいアゲハ食堂 website server and tools",
	Long: `agehasite serves the restaurant's single-page site with its event
calendar (fed from the staff spreadsheet) and the concierge chat.

It also offers a terminal calendar, a one-shot chat question and a
page screenshot for link previews.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", configPath, err)
		}
		conf = cfg
		applyLogging(conf)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		appLog.Sync()
	},
}

// applyLogging applies the config's log settings; --debug wins.
func applyLogging(c *config.Config) {
	appLog.SetFormat(c.LogFormat)
	if debug {
		appLog.SetLevel(appLog.LevelDebug)
		return
	}
	appLog.SetLevel(appLog.Level(c.LogLevel))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yaml", "Path to config file (created with defaults if missing)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(captureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
