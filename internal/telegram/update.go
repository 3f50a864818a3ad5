package telegram

import (
	"bytes"
	"encoding/json"

	"github.com/go-telegram/bot/models"
	"github.com/tidwall/gjson"

	"github.com/edgard/tg2site/internal/logger"
)

// Payload kinds an update can carry, in extraction order.
const (
	KindChannelPost       = "channel_post"
	KindEditedChannelPost = "edited_channel_post"
	KindMessage           = "message"
	KindEditedMessage     = "edited_message"
)

// Update is one item of the getUpdates result. Message payloads are kept as
// raw JSON so fields unknown to this program survive persistence.
type Update struct {
	ID                int64           `json:"update_id"`
	ChannelPost       json.RawMessage `json:"channel_post,omitempty"`
	EditedChannelPost json.RawMessage `json:"edited_channel_post,omitempty"`
	Message           json.RawMessage `json:"message,omitempty"`
	EditedMessage     json.RawMessage `json:"edited_message,omitempty"`
}

// Payload returns the message embedded in the update. When several are
// present the first one in channel post, edited channel post, message,
// edited message order wins.
func (u Update) Payload() (kind string, raw json.RawMessage, ok bool) {
	candidates := []struct {
		kind string
		raw  json.RawMessage
	}{
		{KindChannelPost, u.ChannelPost},
		{KindEditedChannelPost, u.EditedChannelPost},
		{KindMessage, u.Message},
		{KindEditedMessage, u.EditedMessage},
	}
	for _, c := range candidates {
		if present(c.raw) {
			return c.kind, c.raw, true
		}
	}
	return "", nil, false
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// ChatID returns the chat.id field of a message payload. It reports false
// when the field is missing or not a number.
func ChatID(raw json.RawMessage) (int64, bool) {
	res := gjson.GetBytes(raw, "chat.id")
	if res.Type != gjson.Number {
		return 0, false
	}
	return res.Int(), true
}

// MessageAttrs returns a few log attributes describing a message payload.
// Payloads that do not decode yield no attributes.
func MessageAttrs(raw json.RawMessage) []any {
	var msg models.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil
	}
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	return []any{
		"message_id", msg.ID,
		"date", msg.Date,
		"text_preview", logger.TruncateString(text, 50),
	}
}
