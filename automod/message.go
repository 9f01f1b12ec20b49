package automod

// Text message handed to the ingestion queue. Immutable once created.
type Message struct {
	Text      string
	SenderID  string
	ChatID    string
	MessageID string
	IsGroup   bool
	// transport-specific handle to the original message (eg, for replies or deletion)
	Raw any
}

// Message as delivered by a transport, before routing.
//
// Carries the extra context needed by command handling (mentions, quoted sender) on top of what is queued for classification.
type Inbound struct {
	ChatID   string
	ChatName string
	SenderID string
	// human-readable sender name, if the transport knows one
	SenderName string
	MessageID  string
	Text       string
	IsGroup    bool
	// message was sent by this bot account
	FromSelf bool
	// user IDs mentioned in the message, in order of appearance
	Mentions []string
	// sender of the message being replied to, if any
	QuotedSenderID string
	Raw            any
}

// Converts to the immutable queued form.
func (in *Inbound) Message() Message {
	return Message{
		Text:      in.Text,
		SenderID:  in.SenderID,
		ChatID:    in.ChatID,
		MessageID: in.MessageID,
		IsGroup:   in.IsGroup,
		Raw:       in.Raw,
	}
}
