package mirror_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/edgard/tg2site/internal/logger"
	"github.com/edgard/tg2site/internal/mirror"
	"github.com/edgard/tg2site/internal/telegram"
)

// scriptedFetcher returns one batch per call and records the offsets asked for.
type scriptedFetcher struct {
	batches [][]telegram.Update
	offsets []int64
	err     error
	// cancel, when set, is called once the batches run out.
	cancel context.CancelFunc
}

func (f *scriptedFetcher) GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error) {
	f.offsets = append(f.offsets, offset)
	if len(f.batches) == 0 {
		if f.err != nil {
			return nil, f.err
		}
		if f.cancel != nil {
			f.cancel()
		}
		return nil, ctx.Err()
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

type recordingSyncer struct {
	batches [][]mirror.Entry
	err     error
}

func (s *recordingSyncer) Sync(_ context.Context, entries []mirror.Entry) error {
	s.batches = append(s.batches, entries)
	return s.err
}

func post(id, chat int64, text string) telegram.Update {
	raw, _ := json.Marshal(map[string]any{"chat": map[string]any{"id": chat}, "text": text})
	return telegram.Update{ID: id, ChannelPost: raw}
}

func TestStep_PersistsMatchingAndAdvances(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo := &fakeRepo{changed: true}
	fetcher := &scriptedFetcher{batches: [][]telegram.Update{{
		{ID: 10, ChannelPost: json.RawMessage(`{"chat":{"id":42},"text":"a"}`)},
		post(11, 7, "b"),
	}}}
	m := mirror.New(fetcher, mirror.NewRepoSync(repo, dir, "Sync updates", logger.Discard()), 42, mirror.NoCursor, logger.Discard())

	if err := m.Step(context.Background()); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	if got := m.Cursor(); got != 11 {
		t.Errorf("Cursor() = %d, want 11", got)
	}
	if !reflect.DeepEqual(fetcher.offsets, []int64{0}) {
		t.Errorf("offsets = %v, want [0]", fetcher.offsets)
	}
	wantCalls := []string{"pull", "add", "status", "commit:Sync updates", "push"}
	if !reflect.DeepEqual(repo.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", repo.calls, wantCalls)
	}

	data, err := os.ReadFile(filepath.Join(dir, "10.json"))
	if err != nil {
		t.Fatalf("read 10.json: %v", err)
	}
	if string(data) != `{"chat":{"id":42},"text":"a"}` {
		t.Errorf("10.json = %s", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "11.json")); !os.IsNotExist(err) {
		t.Errorf("11.json should not exist, stat error = %v", err)
	}

	stats := m.Stats()
	if stats.Cursor != 11 || stats.Polls != 1 || stats.UpdatesSeen != 2 || stats.MessagesPersisted != 1 || stats.Syncs != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats.LastSync.IsZero() {
		t.Error("Stats().LastSync not set")
	}
}

func TestStep_NoMatchesAdvancesWithoutSync(t *testing.T) {
	t.Parallel()

	syncer := &recordingSyncer{}
	fetcher := &scriptedFetcher{batches: [][]telegram.Update{{post(20, 7, "x"), post(21, 8, "y")}}}
	m := mirror.New(fetcher, syncer, 42, 19, logger.Discard())

	if err := m.Step(context.Background()); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if len(syncer.batches) != 0 {
		t.Errorf("Sync called %d times, want 0", len(syncer.batches))
	}
	if got := m.Cursor(); got != 21 {
		t.Errorf("Cursor() = %d, want 21", got)
	}
}

func TestStep_EmptyBatchKeepsCursor(t *testing.T) {
	t.Parallel()

	syncer := &recordingSyncer{}
	fetcher := &scriptedFetcher{batches: [][]telegram.Update{{}}}
	m := mirror.New(fetcher, syncer, 42, 7, logger.Discard())

	if err := m.Step(context.Background()); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if got := m.Cursor(); got != 7 {
		t.Errorf("Cursor() = %d, want 7", got)
	}
	if len(syncer.batches) != 0 {
		t.Errorf("Sync called %d times, want 0", len(syncer.batches))
	}
	if got := m.Stats().Polls; got != 1 {
		t.Errorf("Stats().Polls = %d, want 1", got)
	}
}

func TestStep_ResumesFromRecoveredCursor(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, "5.json", "7.json")
	cursor, err := mirror.RecoverCursor(dir)
	if err != nil {
		t.Fatalf("RecoverCursor() error = %v", err)
	}

	fetcher := &scriptedFetcher{batches: [][]telegram.Update{{}}}
	m := mirror.New(fetcher, &recordingSyncer{}, 42, cursor, logger.Discard())
	if err := m.Step(context.Background()); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if !reflect.DeepEqual(fetcher.offsets, []int64{8}) {
		t.Errorf("offsets = %v, want [8]", fetcher.offsets)
	}
}

func TestStep_FetchErrorKeepsCursor(t *testing.T) {
	t.Parallel()

	errFetch := errors.New("network down")
	syncer := &recordingSyncer{}
	m := mirror.New(&scriptedFetcher{err: errFetch}, syncer, 42, 3, logger.Discard())

	err := m.Step(context.Background())
	if !errors.Is(err, errFetch) {
		t.Fatalf("Step() error = %v, want %v", err, errFetch)
	}
	if got := m.Cursor(); got != 3 {
		t.Errorf("Cursor() = %d, want 3", got)
	}
	if len(syncer.batches) != 0 {
		t.Error("Sync called after fetch failure")
	}
}

func TestStep_SyncErrorKeepsCursor(t *testing.T) {
	t.Parallel()

	errSync := errors.New("push rejected")
	syncer := &recordingSyncer{err: errSync}
	fetcher := &scriptedFetcher{batches: [][]telegram.Update{{post(4, 42, "a")}}}
	m := mirror.New(fetcher, syncer, 42, 3, logger.Discard())

	if err := m.Step(context.Background()); !errors.Is(err, errSync) {
		t.Fatalf("Step() error = %v, want %v", err, errSync)
	}
	if got := m.Cursor(); got != 3 {
		t.Errorf("Cursor() = %d, want 3", got)
	}
}

func TestRun_StopsOnCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncer := &recordingSyncer{}
	fetcher := &scriptedFetcher{
		batches: [][]telegram.Update{
			{post(1, 42, "a"), post(2, 42, "b")},
			{post(3, 9, "c")},
			{post(4, 42, "d")},
		},
		cancel: cancel,
	}
	m := mirror.New(fetcher, syncer, 42, mirror.NoCursor, logger.Discard())

	err := m.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	if !reflect.DeepEqual(fetcher.offsets, []int64{0, 3, 4, 5}) {
		t.Errorf("offsets = %v, want [0 3 4 5]", fetcher.offsets)
	}
	if len(syncer.batches) != 2 {
		t.Fatalf("Sync called %d times, want 2", len(syncer.batches))
	}
	if len(syncer.batches[0]) != 2 || syncer.batches[1][0].UpdateID != 4 {
		t.Errorf("batches = %+v", syncer.batches)
	}
	if got := m.Cursor(); got != 4 {
		t.Errorf("Cursor() = %d, want 4", got)
	}
}

func TestRun_ReturnsFirstError(t *testing.T) {
	t.Parallel()

	errFetch := errors.New("bad gateway")
	fetcher := &scriptedFetcher{batches: [][]telegram.Update{{post(1, 42, "a")}}, err: errFetch}
	m := mirror.New(fetcher, &recordingSyncer{}, 42, mirror.NoCursor, logger.Discard())

	if err := m.Run(context.Background()); !errors.Is(err, errFetch) {
		t.Fatalf("Run() error = %v, want %v", err, errFetch)
	}
	if got := m.Cursor(); got != 1 {
		t.Errorf("Cursor() = %d, want 1", got)
	}
}
