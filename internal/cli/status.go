package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chatrank/chatrank/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ ChatRank Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 ChatRank Status")
		fmt.Printf("Version: %s\n", version)

		// Check config
		configPath, err := config.ConfigPath()
		if err == nil {
			if _, err := os.Stat(configPath); err == nil {
				fmt.Println("Config:  ✓ Found (" + configPath + ")")
			} else {
				fmt.Println("Config:  ✗ Not found (" + configPath + ")")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Println("Config:  ? Unable to load config")
			return
		}
		if cfg.Scoring.APIKey != "" {
			fmt.Println("API Key: ✓ Found")
		} else {
			fmt.Println("API Key: ✗ Not found")
		}

		if cfg.Channels.Telegram.Enabled {
			fmt.Println("Telegram: ✓ Enabled")
		} else {
			fmt.Println("Telegram: ✗ Disabled")
		}
		if cfg.Channels.Slack.Enabled {
			fmt.Println("Slack:    ✓ Enabled")
		} else {
			fmt.Println("Slack:    ✗ Disabled")
		}

		dbPath := cfg.DBPath()
		if _, err := os.Stat(dbPath); err == nil {
			fmt.Println("Score DB: ✓ Found (" + dbPath + ")")
		} else {
			fmt.Println("Score DB: ✗ Not created yet (" + dbPath + ")")
		}

		if err := cfg.Validate(); err != nil {
			fmt.Printf("Status:  Not ready (%v)\n", err)
			return
		}
		fmt.Println("Status:  Ready")
	},
}
