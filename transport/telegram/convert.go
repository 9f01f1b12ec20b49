package telegram

import (
	"strconv"
	"strings"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"

	"github.com/mymmrac/telego"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func userName(u *telego.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" && u.Username != "" {
		name = "@" + u.Username
	}
	return name
}

// Converts a Bot API message to the transport-neutral inbound form.
//
// Only "text_mention" entities carry a user ID; plain "@username" mentions cannot be resolved to a user and are skipped. Captions count as text.
func ToInbound(msg *telego.Message, selfID int64) automod.Inbound {
	text := msg.Text
	entities := msg.Entities
	if text == "" {
		text = msg.Caption
		entities = msg.CaptionEntities
	}

	in := automod.Inbound{
		ChatID:    formatID(msg.Chat.ID),
		ChatName:  msg.Chat.Title,
		MessageID: strconv.Itoa(msg.MessageID),
		Text:      text,
		IsGroup:   msg.Chat.Type == telego.ChatTypeGroup || msg.Chat.Type == telego.ChatTypeSupergroup,
		Raw:       msg,
	}
	if msg.From != nil {
		in.SenderID = formatID(msg.From.ID)
		in.SenderName = userName(msg.From)
		in.FromSelf = msg.From.ID == selfID
	} else if msg.SenderChat != nil {
		// anonymous admins and channel posts speak as the chat itself
		in.SenderID = formatID(msg.SenderChat.ID)
		in.SenderName = msg.SenderChat.Title
	}

	for _, e := range entities {
		if e.Type == telego.EntityTypeTextMention && e.User != nil {
			in.Mentions = append(in.Mentions, formatID(e.User.ID))
		}
	}
	if reply := msg.ReplyToMessage; reply != nil && reply.From != nil {
		in.QuotedSenderID = formatID(reply.From.ID)
	}
	return in
}
