// Telegram chat transport for the moderation bot, built on the telego Bot API client.
//
// Receives messages with long polling and implements automod.Transport for replies, deletions and admin lookups. Chat, user and message IDs are carried as decimal strings.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoapi"
)

type Transport struct {
	Bot    *telego.Bot
	Logger *slog.Logger
	// the bot's own user, resolved at startup
	Self telego.User
}

var _ automod.Transport = (*Transport)(nil)

// adapts slog to the telego logger interface
type slogAdapter struct {
	logger *slog.Logger
}

func (l slogAdapter) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l slogAdapter) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

// Connects to the Bot API and resolves the bot's own identity.
func NewTransport(ctx context.Context, token string, logger *slog.Logger) (*Transport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "telegram")
	bot, err := telego.NewBot(token, telego.WithLogger(slogAdapter{logger: logger}))
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	me, err := bot.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching bot identity: %w", err)
	}
	logger.Info("authorized telegram bot", "username", me.Username, "id", me.ID)
	return &Transport{Bot: bot, Logger: logger, Self: *me}, nil
}

// Marks Bot API client errors (4xx other than rate limiting) as permanent: retrying a deleted message or a chat the bot was removed from cannot succeed.
func classifyErr(err error) error {
	var apiErr *telegoapi.Error
	if errors.As(err, &apiErr) && apiErr.ErrorCode >= 400 && apiErr.ErrorCode < 500 && apiErr.ErrorCode != 429 {
		return fmt.Errorf("%w: %w", automod.ErrPermanent, err)
	}
	return err
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid telegram id %q: %w", automod.ErrPermanent, s, err)
	}
	return id, nil
}

func (t *Transport) SendText(ctx context.Context, chatID, text, quotedMessageID string) error {
	cid, err := parseID(chatID)
	if err != nil {
		return err
	}
	params := &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: cid},
		Text:   text,
	}
	if quotedMessageID != "" {
		mid, err := strconv.Atoi(quotedMessageID)
		if err != nil {
			return fmt.Errorf("invalid message id %q: %w", quotedMessageID, err)
		}
		params.ReplyParameters = &telego.ReplyParameters{MessageID: mid, AllowSendingWithoutReply: true}
	}
	if _, err := t.Bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("sending message to %s: %w", chatID, classifyErr(err))
	}
	return nil
}

func (t *Transport) DeleteMessage(ctx context.Context, chatID, messageID string) error {
	cid, err := parseID(chatID)
	if err != nil {
		return err
	}
	mid, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", messageID, err)
	}
	err = t.Bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    telego.ChatID{ID: cid},
		MessageID: mid,
	})
	if err != nil {
		return fmt.Errorf("deleting message %s in %s: %w", messageID, chatID, classifyErr(err))
	}
	return nil
}

func (t *Transport) GetGroupAdmins(ctx context.Context, chatID string) ([]string, error) {
	cid, err := parseID(chatID)
	if err != nil {
		return nil, err
	}
	members, err := t.Bot.GetChatAdministrators(ctx, &telego.GetChatAdministratorsParams{
		ChatID: telego.ChatID{ID: cid},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching admins of %s: %w", chatID, err)
	}
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, strconv.FormatInt(m.MemberUser().ID, 10))
	}
	return out, nil
}

// Receives messages via long polling, calling handle for each text message until ctx is done. Errors from handle are logged, not returned.
func (t *Transport) Listen(ctx context.Context, handle func(ctx context.Context, in *automod.Inbound) error) error {
	updates, err := t.Bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        30,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return fmt.Errorf("starting long polling: %w", err)
	}
	t.Logger.Info("listening for telegram updates")
	for update := range updates {
		if update.Message == nil {
			continue
		}
		in := ToInbound(update.Message, t.Self.ID)
		if err := handle(ctx, &in); err != nil {
			t.Logger.Error("failed to handle message", "chat", in.ChatID, "message", in.MessageID, "err", err)
		}
	}
	return ctx.Err()
}
