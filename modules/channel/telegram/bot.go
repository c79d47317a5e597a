package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	maxConsecutivePollingErrors = 5
	errorPauseDuration          = 30 * time.Second
)

// replyFailedNotice is sent when the conversation service cannot produce
// a reply.
const replyFailedNotice = "I'm having trouble answering right now. Please try again in a moment."

// Responder produces a reply for one inbound message.
// *chat.Service satisfies this.
type Responder interface {
	Respond(ctx context.Context, userID int64, persona, text string) (string, error)
}

// Bot runs the long-polling loop and routes messages to the responder.
type Bot struct {
	client    *Client
	responder Responder
	config    Config
	logger    *slog.Logger

	mu       sync.Mutex
	personas map[int64]string // chat ID → selected persona

	cancel context.CancelFunc
	done   chan struct{}
}

// NewBot creates a Bot. The default persona is resolved by the responder;
// users switch with the /persona command.
func NewBot(client *Client, responder Responder, cfg Config, logger *slog.Logger) *Bot {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		client:    client,
		responder: responder,
		config:    cfg,
		logger:    logger,
		personas:  make(map[int64]string),
		done:      make(chan struct{}),
	}
}

// Start launches the polling loop in a goroutine.
func (b *Bot) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	go b.loop(ctx)
}

// Stop signals the polling loop to stop and waits for it to finish.
func (b *Bot) Stop() {
	if b.cancel == nil {
		return
	}
	b.cancel()
	<-b.done
}

// loop runs the long-polling loop until the context is cancelled.
func (b *Bot) loop(ctx context.Context) {
	defer close(b.done)

	var offset int
	var consecutiveErrors int

	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := b.client.GetUpdates(ctx, GetUpdatesRequest{
			Offset:         offset,
			Timeout:        b.config.PollTimeoutSeconds,
			AllowedUpdates: []string{"message"},
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			consecutiveErrors++
			b.logger.Error("telegram: getUpdates failed",
				"error", err,
				"consecutive_errors", consecutiveErrors,
			)

			if consecutiveErrors >= maxConsecutivePollingErrors {
				b.logger.Warn("telegram: polling paused after consecutive errors",
					"pause", errorPauseDuration,
				)
				select {
				case <-ctx.Done():
					return
				case <-time.After(errorPauseDuration):
				}
				consecutiveErrors = 0
			}
			continue
		}

		consecutiveErrors = 0

		for _, update := range updates {
			offset = update.UpdateID + 1
			b.handleUpdate(ctx, &update)
		}
	}
}

// handleUpdate processes a single update.
func (b *Bot) handleUpdate(ctx context.Context, update *Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot || msg.Text == "" {
		return
	}

	if strings.HasPrefix(msg.Text, "/") {
		b.handleCommand(ctx, msg)
		return
	}

	chatID := msg.Chat.ID
	if err := b.client.SendChatAction(ctx, chatID, "typing"); err != nil {
		b.logger.Debug("telegram: sendChatAction failed", "chat_id", chatID, "error", err)
	}

	reply, err := b.responder.Respond(ctx, msg.From.ID, b.persona(chatID), msg.Text)
	if err != nil {
		b.logger.Error("telegram: respond failed",
			"chat_id", chatID, "user_id", msg.From.ID, "error", err)
		reply = replyFailedNotice
	}

	if _, err := b.client.SendMessage(ctx, SendMessageRequest{
		ChatID: chatID,
		Text:   reply,
	}); err != nil {
		b.logger.Error("telegram: sendMessage failed", "chat_id", chatID, "error", err)
	}
}

// handleCommand processes bot commands.
func (b *Bot) handleCommand(ctx context.Context, msg *Message) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(msg.Text), " ")
	cmd, _, _ = strings.Cut(cmd, "@") // strip /cmd@botname addressing

	var reply string
	switch cmd {
	case "/start":
		reply = "Hi! I'm listening. Just write me whenever you like."
	case "/persona":
		arg = strings.TrimSpace(arg)
		if arg == "" {
			reply = "Usage: /persona <name>"
			break
		}
		b.setPersona(msg.Chat.ID, arg)
		reply = "Switched to " + arg + "."
	default:
		return
	}

	if _, err := b.client.SendMessage(ctx, SendMessageRequest{
		ChatID: msg.Chat.ID,
		Text:   reply,
	}); err != nil {
		b.logger.Error("telegram: sendMessage failed", "chat_id", msg.Chat.ID, "error", err)
	}
}

// persona returns the persona selected for a chat, or "" for the default.
func (b *Bot) persona(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.personas[chatID]
}

func (b *Bot) setPersona(chatID int64, persona string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.personas[chatID] = persona
}
