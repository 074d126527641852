package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatrank/chatrank/internal/bot"
	"github.com/chatrank/chatrank/internal/bus"
	"github.com/chatrank/chatrank/internal/channels"
	"github.com/chatrank/chatrank/internal/config"
	"github.com/chatrank/chatrank/internal/provider"
	"github.com/chatrank/chatrank/internal/scorer"
	"github.com/chatrank/chatrank/internal/store"
	"github.com/chatrank/chatrank/internal/stream"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Start the scoring bot (Telegram, Slack)",
	Run:   runBot,
}

var botSignalNotify = signal.Notify
var botSignalStop = signal.Stop

func runBot(cmd *cobra.Command, args []string) {
	printHeader("🏆 ChatRank Bot")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	dbPath := cfg.DBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		fmt.Printf("Failed to create data dir: %v\n", err)
		os.Exit(1)
	}
	st, err := store.New(dbPath)
	if err != nil {
		fmt.Printf("Store error: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	prov := provider.NewOpenAIProvider(
		cfg.Scoring.APIKey,
		cfg.Scoring.APIBase,
		cfg.Scoring.Model,
		time.Duration(cfg.Scoring.TimeoutSeconds)*time.Second,
	)
	sc := scorer.New(prov, scorer.Options{
		Model:       cfg.Scoring.Model,
		Temperature: cfg.Scoring.Temperature,
		Parallelism: cfg.Scoring.Parallelism,
		Timeout:     time.Duration(cfg.Scoring.TimeoutSeconds) * time.Second,
	})

	msgBus := bus.NewMessageBus()

	var publisher bot.EventPublisher
	if cfg.Stream.Brokers != "" {
		p := stream.NewPublisher(cfg.Stream.Brokers, cfg.Stream.Topic)
		defer p.Close()
		publisher = p
		slog.Info("Score event stream enabled", "brokers", cfg.Stream.Brokers, "topic", cfg.Stream.Topic)
	}

	loop := bot.NewLoop(bot.LoopOptions{
		Bus:                    msgBus,
		Scorer:                 sc,
		Store:                  st,
		Publisher:              publisher,
		LeaderboardMinMessages: cfg.Leaderboard.MinMessages,
		LeaderboardLimit:       cfg.Leaderboard.Limit,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	botSignalNotify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer botSignalStop(sigChan)

	// Start channels
	tg := channels.NewTelegramChannel(cfg.Channels.Telegram, msgBus)
	if err := tg.Start(ctx); err != nil {
		fmt.Printf("Failed to start Telegram: %v\n", err)
		os.Exit(1)
	}
	sl := channels.NewSlackChannel(cfg.Channels.Slack, msgBus)
	if err := sl.Start(ctx); err != nil {
		fmt.Printf("Failed to start Slack: %v\n", err)
		os.Exit(1)
	}

	go msgBus.DispatchOutbound(ctx)
	go loop.Run(ctx)

	enabled := []string{}
	if cfg.Channels.Telegram.Enabled {
		enabled = append(enabled, "telegram")
	}
	if cfg.Channels.Slack.Enabled {
		enabled = append(enabled, "slack")
	}
	fmt.Printf("Bot is running (channels: %v, model: %s)\n", enabled, cfg.Scoring.Model)
	fmt.Println("Press Ctrl+C to stop.")

	<-sigChan
	fmt.Println("\nShutting down...")
	cancel()
	_ = tg.Stop()
	_ = sl.Stop()
}
