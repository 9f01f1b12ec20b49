package automod

import (
	"context"
	"errors"
)

// Wrapped by transports around failures which will not succeed on retry (eg, the message to delete no longer exists).
var ErrPermanent = errors.New("permanent transport failure")

// Interface to the chat platform. Identifiers are opaque strings; the transport implementation owns their format.
type Transport interface {
	// Sends a text message to a chat. If quotedMessageID is not empty, the message is sent as a reply to it.
	SendText(ctx context.Context, chatID, text, quotedMessageID string) error
	DeleteMessage(ctx context.Context, chatID, messageID string) error
	// Returns the user IDs of all administrators of a group chat.
	GetGroupAdmins(ctx context.Context, chatID string) ([]string, error)
}
