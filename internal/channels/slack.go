package channels

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/chatrank/chatrank/internal/bus"
	"github.com/chatrank/chatrank/internal/config"
)

// SlackChannel bridges Slack Socket Mode events onto the message bus.
type SlackChannel struct {
	BaseChannel
	config config.SlackConfig
	api    *slack.Client
	socket *socketmode.Client
}

// NewSlackChannel creates a Slack channel.
func NewSlackChannel(cfg config.SlackConfig, messageBus *bus.MessageBus) *SlackChannel {
	return &SlackChannel{
		BaseChannel: BaseChannel{Bus: messageBus},
		config:      cfg,
	}
}

func (c *SlackChannel) Name() string { return "slack" }

// Start connects to Slack in Socket Mode and subscribes to outbound replies.
func (c *SlackChannel) Start(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}
	c.api = slack.New(c.config.BotToken, slack.OptionAppLevelToken(c.config.AppToken))
	c.socket = socketmode.New(c.api)

	c.Bus.Subscribe(c.Name(), func(msg *bus.OutboundMessage) {
		if err := c.Send(ctx, msg); err != nil {
			slog.Error("Slack send failed", "chat_id", msg.ChatID, "error", err)
		}
	})

	go c.run(ctx)
	return nil
}

func (c *SlackChannel) Stop() error { return nil }

// Send posts a reply to the originating Slack channel.
func (c *SlackChannel) Send(ctx context.Context, msg *bus.OutboundMessage) error {
	_, _, err := c.api.PostMessageContext(ctx, msg.ChatID, slack.MsgOptionText(msg.Content, false))
	return err
}

func (c *SlackChannel) run(ctx context.Context) {
	go func() {
		for evt := range c.socket.Events {
			if evt.Type != socketmode.EventTypeEventsAPI {
				continue
			}
			if evt.Request != nil {
				c.socket.Ack(*evt.Request)
			}
			ev, ok := evt.Data.(slackevents.EventsAPIEvent)
			if !ok || ev.Type != slackevents.CallbackEvent {
				continue
			}
			in, ok := ev.InnerEvent.Data.(*slackevents.MessageEvent)
			if !ok || in == nil {
				continue
			}
			if msg := c.toInbound(in); msg != nil {
				c.Bus.PublishInbound(msg)
			}
		}
	}()
	if err := c.socket.RunContext(ctx); err != nil && ctx.Err() == nil {
		slog.Error("Slack socket mode stopped", "error", err)
	}
}

// toInbound converts a message event to a bus message, or nil for events the
// bot should ignore (its own messages, bot posts, edits, empty text).
func (c *SlackChannel) toInbound(in *slackevents.MessageEvent) *bus.InboundMessage {
	if in.BotID != "" || in.SubType != "" {
		return nil
	}
	if in.User == "" || in.User == c.config.BotUserID {
		return nil
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil
	}
	return &bus.InboundMessage{
		Channel:    c.Name(),
		SenderID:   in.User,
		SenderName: in.User,
		ChatID:     in.Channel,
		IsGroup:    in.ChannelType != "im",
		TraceID:    uuid.NewString(),
		Content:    in.Text,
		Timestamp:  time.Now(),
	}
}
