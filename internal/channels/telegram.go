package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chatrank/chatrank/internal/bus"
	"github.com/chatrank/chatrank/internal/config"
)

// TelegramChannel long-polls the Telegram Bot API and bridges updates onto
// the message bus.
type TelegramChannel struct {
	BaseChannel
	config config.TelegramConfig
	client *http.Client
	offset int64
}

// NewTelegramChannel creates a Telegram channel.
func NewTelegramChannel(cfg config.TelegramConfig, messageBus *bus.MessageBus) *TelegramChannel {
	pollTimeout := cfg.PollTimeoutSeconds
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	cfg.PollTimeoutSeconds = pollTimeout
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.telegram.org"
	}
	return &TelegramChannel{
		BaseChannel: BaseChannel{Bus: messageBus},
		config:      cfg,
		client: &http.Client{
			// Long poll timeout plus headroom for the round trip.
			Timeout: time.Duration(pollTimeout+15) * time.Second,
		},
	}
}

func (c *TelegramChannel) Name() string { return "telegram" }

// Start subscribes to outbound replies and begins long polling.
func (c *TelegramChannel) Start(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}
	c.Bus.Subscribe(c.Name(), func(msg *bus.OutboundMessage) {
		if err := c.Send(ctx, msg); err != nil {
			slog.Error("Telegram send failed", "chat_id", msg.ChatID, "error", err)
		}
	})
	go c.poll(ctx)
	return nil
}

func (c *TelegramChannel) Stop() error { return nil }

// Send delivers a reply via the Bot API sendMessage method.
func (c *TelegramChannel) Send(ctx context.Context, msg *bus.OutboundMessage) error {
	body, _ := json.Marshal(map[string]any{
		"chat_id": msg.ChatID,
		"text":    msg.Content,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram sendMessage status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (c *TelegramChannel) poll(ctx context.Context) {
	slog.Info("Telegram channel polling", "timeout", c.config.PollTimeoutSeconds)
	for {
		if ctx.Err() != nil {
			return
		}
		updates, err := c.getUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("Telegram getUpdates failed", "error", err)
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= c.offset {
				c.offset = u.UpdateID + 1
			}
			if msg := c.toInbound(u); msg != nil {
				c.Bus.PublishInbound(msg)
			}
		}
	}
}

func (c *TelegramChannel) getUpdates(ctx context.Context) ([]tgUpdate, error) {
	body, _ := json.Marshal(map[string]any{
		"offset":          c.offset,
		"timeout":         c.config.PollTimeoutSeconds,
		"allowed_updates": []string{"message"},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("getUpdates"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("telegram getUpdates status %d: %s", resp.StatusCode, string(respBody))
	}
	var parsed struct {
		OK     bool       `json:"ok"`
		Result []tgUpdate `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode getUpdates: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram getUpdates not ok")
	}
	return parsed.Result, nil
}

// toInbound converts one update to a bus message, or nil when the update
// carries nothing scoreable (no message, no sender, empty text).
func (c *TelegramChannel) toInbound(u tgUpdate) *bus.InboundMessage {
	m := u.Message
	if m == nil || m.From == nil || strings.TrimSpace(m.Text) == "" {
		return nil
	}
	senderID := strconv.FormatInt(m.From.ID, 10)
	senderName := m.From.Username
	if senderName == "" {
		senderName = senderID
	}
	isGroup := m.Chat.Type == "group" || m.Chat.Type == "supergroup"
	return &bus.InboundMessage{
		Channel:    c.Name(),
		SenderID:   senderID,
		SenderName: senderName,
		ChatID:     strconv.FormatInt(m.Chat.ID, 10),
		ChatTitle:  m.Chat.Title,
		IsGroup:    isGroup,
		TraceID:    uuid.NewString(),
		Content:    m.Text,
		Timestamp:  time.Unix(m.Date, 0),
	}
}

func (c *TelegramChannel) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", strings.TrimSuffix(c.config.APIBase, "/"), c.config.Token, method)
}

type tgUpdate struct {
	UpdateID int64      `json:"update_id"`
	Message  *tgMessage `json:"message"`
}

type tgMessage struct {
	MessageID int64   `json:"message_id"`
	From      *tgUser `json:"from"`
	Chat      tgChat  `json:"chat"`
	Date      int64   `json:"date"`
	Text      string  `json:"text"`
}

type tgUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsBot    bool   `json:"is_bot"`
}

type tgChat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}
