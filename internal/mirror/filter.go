package mirror

import (
	"encoding/json"

	"github.com/edgard/tg2site/internal/telegram"
)

// Entry is a message selected for persistence.
type Entry struct {
	UpdateID int64
	Kind     string
	Message  json.RawMessage
}

// Filter keeps the updates whose message belongs to channelID. Updates with
// no message, no numeric chat id or another chat are dropped.
func Filter(updates []telegram.Update, channelID int64) []Entry {
	var entries []Entry
	for _, u := range updates {
		kind, raw, ok := u.Payload()
		if !ok {
			continue
		}
		if chatID, ok := telegram.ChatID(raw); !ok || chatID != channelID {
			continue
		}
		entries = append(entries, Entry{UpdateID: u.ID, Kind: kind, Message: raw})
	}
	return entries
}

// NextCursor returns the identifier of the last update of the batch, or
// cursor unchanged when the batch is empty. Matching plays no part, so
// irrelevant updates are never fetched twice.
func NextCursor(cursor int64, updates []telegram.Update) int64 {
	if len(updates) == 0 {
		return cursor
	}
	return updates[len(updates)-1].ID
}

// chatIDs lists the distinct chat ids of a batch in first-seen order.
func chatIDs(updates []telegram.Update) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, u := range updates {
		_, raw, ok := u.Payload()
		if !ok {
			continue
		}
		if id, ok := telegram.ChatID(raw); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
