// Package slackbot connects the interpreter to Slack over Socket Mode.
package slackbot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/MJEvans3/roombookingslackbot/internal/logging"
)

// Handler interprets one user message and returns the reply text.
type Handler interface {
	Handle(ctx context.Context, userID, text string) string
}

// Bot owns the Socket Mode connection and routes app mentions to the handler.
type Bot struct {
	api     *slack.Client
	socket  *socketmode.Client
	handler Handler
	logger  *slog.Logger
}

// New builds a bot from the two Slack tokens. The app token (xapp-) opens
// the Socket Mode connection; the bot token (xoxb-) posts replies.
func New(botToken, appToken string, handler Handler, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	socket := socketmode.New(api)
	return &Bot{api: api, socket: socket, handler: handler, logger: logger}
}

// Run verifies the credentials, then consumes Socket Mode events until the
// context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	identity, err := b.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test: %w", err)
	}
	b.logger.InfoContext(ctx, "connected to slack", "bot_user_id", identity.UserID, "team", identity.Team)

	go b.consumeEvents(ctx)

	if err := b.socket.RunContext(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("socket mode: %w", err)
	}
	return nil
}

func (b *Bot) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.socket.Events:
			if !ok {
				return
			}
			b.dispatch(ctx, evt)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		b.logger.InfoContext(ctx, "connecting to slack")
	case socketmode.EventTypeConnectionError:
		b.logger.ErrorContext(ctx, "slack connection error")
	case socketmode.EventTypeConnected:
		b.logger.InfoContext(ctx, "slack connection established")
	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		if evt.Request != nil {
			b.socket.Ack(*evt.Request)
		}
		b.handleEventsAPI(ctx, apiEvent)
	}
}

func (b *Bot) handleEventsAPI(ctx context.Context, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	mention, ok := event.InnerEvent.Data.(*slackevents.AppMentionEvent)
	if !ok {
		return
	}

	requestID := uuid.NewString()
	logger := b.logger.With("request_id", requestID, "channel", mention.Channel, "user_id", mention.User)
	ctx = logging.ContextWithLogger(ctx, logger)

	reply := b.safeHandle(ctx, logger, mention.User, mention.Text)
	if reply == "" {
		return
	}
	if _, _, err := b.api.PostMessageContext(ctx, mention.Channel, slack.MsgOptionText(reply, false)); err != nil {
		logger.ErrorContext(ctx, "failed to post reply", "error", err)
	}
}

// safeHandle runs the handler, converting a panic into an apology so one bad
// message cannot take the bot down.
func (b *Bot) safeHandle(ctx context.Context, logger *slog.Logger, userID, text string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "handler panicked", "panic", r)
			reply = "Sorry, something went wrong handling that. Please try again."
		}
	}()
	return b.handler.Handle(ctx, userID, text)
}
