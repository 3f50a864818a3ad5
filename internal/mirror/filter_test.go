package mirror_test

import (
	"encoding/json"
	"testing"

	"github.com/edgard/tg2site/internal/mirror"
	"github.com/edgard/tg2site/internal/telegram"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	updates := []telegram.Update{
		{ID: 1, ChannelPost: json.RawMessage(`{"chat":{"id":42},"text":"a"}`)},
		{ID: 2, ChannelPost: json.RawMessage(`{"chat":{"id":7},"text":"b"}`)},
		{ID: 3},
		{ID: 4, EditedChannelPost: json.RawMessage(`{"chat":{"id":42},"text":"c"}`)},
		{ID: 5, Message: json.RawMessage(`{"chat":{"id":"42"}}`)},
		{ID: 6, Message: json.RawMessage(`{"text":"no chat"}`)},
		{ID: 7, EditedMessage: json.RawMessage(`{"chat":{"id":42}}`)},
	}

	entries := mirror.Filter(updates, 42)

	want := []struct {
		id   int64
		kind string
	}{
		{1, telegram.KindChannelPost},
		{4, telegram.KindEditedChannelPost},
		{7, telegram.KindEditedMessage},
	}
	if len(entries) != len(want) {
		t.Fatalf("Filter() returned %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i, w := range want {
		if entries[i].UpdateID != w.id || entries[i].Kind != w.kind {
			t.Errorf("entry %d = {%d %s}, want {%d %s}", i, entries[i].UpdateID, entries[i].Kind, w.id, w.kind)
		}
	}
}

func TestFilter_NoMatches(t *testing.T) {
	t.Parallel()

	updates := []telegram.Update{
		{ID: 1, ChannelPost: json.RawMessage(`{"chat":{"id":7}}`)},
	}
	if got := mirror.Filter(updates, 42); len(got) != 0 {
		t.Errorf("Filter() = %+v, want none", got)
	}
}

func TestNextCursor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cursor  int64
		updates []telegram.Update
		want    int64
	}{
		{name: "empty batch keeps cursor", cursor: 5, want: 5},
		{name: "initial empty batch", cursor: mirror.NoCursor, want: mirror.NoCursor},
		{name: "last update wins", cursor: 5, updates: []telegram.Update{{ID: 6}, {ID: 9}}, want: 9},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := mirror.NextCursor(tt.cursor, tt.updates); got != tt.want {
				t.Errorf("NextCursor() = %d, want %d", got, tt.want)
			}
		})
	}
}
