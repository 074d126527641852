// Package bot implements the core message-processing loop: command routing,
// rubric scoring, persistence, and reply formatting.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chatrank/chatrank/internal/bus"
	"github.com/chatrank/chatrank/internal/store"
)

// MessageScorer rates a message against the rubric.
type MessageScorer interface {
	Score(ctx context.Context, message string) (map[string]float64, float64)
}

// ScoreStore is the persistence surface the loop needs.
type ScoreStore interface {
	Insert(ctx context.Context, row store.ScoredMessage) error
	UserStats(ctx context.Context, userID string) (avg float64, count int, ok bool, err error)
	Leaderboard(ctx context.Context, minMessages, limit int) ([]store.LeaderboardEntry, error)
	TodayTop(ctx context.Context) (username string, score float64, ok bool, err error)
	Recent(ctx context.Context, limit int) ([]store.ScoredMessage, error)
	Count(ctx context.Context) (int, error)
}

// EventPublisher receives every persisted scored message (fire-and-forget).
type EventPublisher interface {
	Publish(ctx context.Context, row store.ScoredMessage) error
}

// LoopOptions contains configuration for the bot loop.
type LoopOptions struct {
	Bus       *bus.MessageBus
	Scorer    MessageScorer
	Store     ScoreStore
	Publisher EventPublisher

	LeaderboardMinMessages int
	LeaderboardLimit       int
}

// Loop consumes inbound chat messages and produces replies.
type Loop struct {
	bus       *bus.MessageBus
	scorer    MessageScorer
	store     ScoreStore
	publisher EventPublisher

	minMessages      int
	leaderboardLimit int
}

// NewLoop creates the bot loop.
func NewLoop(opts LoopOptions) *Loop {
	if opts.LeaderboardMinMessages <= 0 {
		opts.LeaderboardMinMessages = 3
	}
	if opts.LeaderboardLimit <= 0 {
		opts.LeaderboardLimit = 5
	}
	return &Loop{
		bus:              opts.Bus,
		scorer:           opts.Scorer,
		store:            opts.Store,
		publisher:        opts.Publisher,
		minMessages:      opts.LeaderboardMinMessages,
		leaderboardLimit: opts.LeaderboardLimit,
	}
}

// Run processes messages from the bus until the context is cancelled.
// Handler errors are logged and answered with a best-effort error reply;
// they never stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info("Bot loop started")
	for {
		msg, err := l.bus.ConsumeInbound(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil // Context cancelled, normal shutdown
			}
			slog.Error("Failed to consume message", "error", err)
			continue
		}

		response := l.handle(ctx, msg)
		if response != "" {
			l.bus.PublishOutbound(&bus.OutboundMessage{
				Channel: msg.Channel,
				ChatID:  msg.ChatID,
				TraceID: msg.TraceID,
				Content: response,
			})
		}
	}
}

// handle dispatches one inbound message and returns the reply text, or ""
// when no reply should be sent.
func (l *Loop) handle(ctx context.Context, msg *bus.InboundMessage) string {
	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return ""
	}

	if strings.HasPrefix(text, "/") {
		return l.handleCommand(ctx, msg, text)
	}
	return l.handlePlainMessage(ctx, msg)
}

func (l *Loop) handleCommand(ctx context.Context, msg *bus.InboundMessage, text string) string {
	cmd := strings.Fields(text)[0]
	cmd = strings.TrimPrefix(cmd, "/")
	// Group chats address commands as /score@botname.
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}

	switch strings.ToLower(cmd) {
	case "ping":
		return "Pong!"
	case "score":
		reply, err := l.handleScore(ctx, msg)
		if err != nil {
			slog.Error("Score command failed", "user_id", msg.SenderID, "trace_id", msg.TraceID, "error", err)
			return "Sorry, there was an error checking your score."
		}
		return reply
	case "leaderboard":
		reply, err := l.handleLeaderboard(ctx)
		if err != nil {
			slog.Error("Leaderboard command failed", "trace_id", msg.TraceID, "error", err)
			return "Sorry, there was an error fetching the leaderboard."
		}
		return reply
	case "debug":
		reply, err := l.handleDebug(ctx)
		if err != nil {
			slog.Error("Debug command failed", "trace_id", msg.TraceID, "error", err)
			return fmt.Sprintf("Debug error: %v", err)
		}
		return reply
	default:
		// Unknown commands are never scored and never answered.
		return ""
	}
}

// handlePlainMessage scores the message and persists it when the average is
// positive. A zero average is silently dropped: no reply, no row.
func (l *Loop) handlePlainMessage(ctx context.Context, msg *bus.InboundMessage) string {
	slog.Info("Scoring message", "user", msg.SenderName, "chat_id", msg.ChatID, "trace_id", msg.TraceID)

	scores, average := l.scorer.Score(ctx, msg.Content)
	if average <= 0 {
		slog.Debug("Message scored zero, dropping", "trace_id", msg.TraceID)
		return ""
	}

	groupName := "Private"
	if msg.IsGroup {
		groupName = msg.ChatTitle
		if groupName == "" {
			groupName = msg.ChatID
		}
	}
	row := store.ScoredMessage{
		UserID:       msg.SenderID,
		Username:     msg.SenderName,
		GroupID:      msg.ChatID,
		GroupName:    groupName,
		Message:      msg.Content,
		ScoreData:    scores,
		AverageScore: average,
	}

	// Reply only after the row is confirmed in the store.
	if err := l.store.Insert(ctx, row); err != nil {
		slog.Error("Failed to persist scored message", "user_id", msg.SenderID, "trace_id", msg.TraceID, "error", err)
		return "Sorry, your message was scored but could not be recorded."
	}

	if l.publisher != nil {
		if err := l.publisher.Publish(ctx, row); err != nil {
			slog.Warn("Score event publish failed", "trace_id", msg.TraceID, "error", err)
		}
	}

	return fmt.Sprintf("Message scored: %.1f/10", average)
}

func (l *Loop) handleScore(ctx context.Context, msg *bus.InboundMessage) (string, error) {
	avg, count, ok, err := l.store.UserStats(ctx, msg.SenderID)
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf("@%s, you don't have any scored messages yet!", msg.SenderName), nil
	}
	return fmt.Sprintf("@%s's stats:\nAverage Score: %.2f/10\nMessages Scored: %d", msg.SenderName, avg, count), nil
}

func (l *Loop) handleLeaderboard(ctx context.Context) (string, error) {
	entries, err := l.store.Leaderboard(ctx, l.minMessages, l.leaderboardLimit)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "No scores yet! Be the first to contribute! 🚀", nil
	}

	var sb strings.Builder
	sb.WriteString("🏆 Community Leaderboard\n\nTop Contributors:\n")
	for i, e := range entries {
		fmt.Fprintf(&sb, "%d. @%s\n", i+1, e.Username)
		fmt.Fprintf(&sb, "   📊 Avg: %.2f/10\n", e.AvgScore)
		fmt.Fprintf(&sb, "   💬 Messages: %d\n", e.MessageCount)
		fmt.Fprintf(&sb, "   ⭐ Best: %.2f/10\n\n", e.BestScore)
	}

	username, score, ok, err := l.store.TodayTop(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		fmt.Fprintf(&sb, "\n🌟 Today's Best: @%s (%.2f/10)", username, score)
	}
	return sb.String(), nil
}

func (l *Loop) handleDebug(ctx context.Context) (string, error) {
	count, err := l.store.Count(ctx)
	if err != nil {
		return "", err
	}
	recent, err := l.store.Recent(ctx, 5)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Database Status:\nTotal records: %d\n\nRecent entries:", count)
	for _, r := range recent {
		fmt.Fprintf(&sb, "\n\nUser: @%s", r.Username)
		fmt.Fprintf(&sb, "\nMessage: %s", truncate(r.Message, 50))
		fmt.Fprintf(&sb, "\nScore: %.1f/10", r.AverageScore)
		fmt.Fprintf(&sb, "\nTimestamp: %s", r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
