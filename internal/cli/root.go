// Package cli implements the chatrank command-line interface.
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/chatrank/chatrank/internal/cli.version=1.2.3"
	version = "0.3.1"
	logo    = "\n" +
		"   ____ _           _   ____             _\n" +
		"  / ___| |__   __ _| |_|  _ \\ __ _ _ __ | | __\n" +
		" | |   | '_ \\ / _` | __| |_) / _` | '_ \\| |/ /\n" +
		" | |___| | | | (_| | |_|  _ < (_| | | | |   <\n" +
		"  \\____|_| |_|\\__,_|\\__|_| \\_\\__,_|_| |_|_|\\_\\\n"
)

var rootCmd = &cobra.Command{
	Use:   "chatrank",
	Short: "ChatRank - community message scoring bot",
	Long:  color.CyanString(logo) + "\nA chat bot that scores group messages against a community-value rubric and keeps a leaderboard.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(botCmd)
}

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}
