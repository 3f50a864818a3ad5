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
)

// fakeRepo records the git operations it is asked to run.
type fakeRepo struct {
	calls   []string
	changed bool
	failOn  string
	err     error
	// onPull runs during Pull, simulating files brought by another writer.
	onPull func()
}

func (r *fakeRepo) step(name string) error {
	r.calls = append(r.calls, name)
	if name == r.failOn {
		return r.err
	}
	return nil
}

func (r *fakeRepo) Pull(context.Context) error {
	if r.onPull != nil {
		r.onPull()
	}
	return r.step("pull")
}

func (r *fakeRepo) AddAll(context.Context) error { return r.step("add") }

func (r *fakeRepo) HasChanges(context.Context) (bool, error) {
	return r.changed, r.step("status")
}

func (r *fakeRepo) Commit(_ context.Context, message string) error {
	return r.step("commit:" + message)
}

func (r *fakeRepo) Push(context.Context) error { return r.step("push") }

func TestRepoSync(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), ".tg2site-messages")
	repo := &fakeRepo{changed: true}
	s := mirror.NewRepoSync(repo, dir, "Sync updates", logger.Discard())

	entries := []mirror.Entry{
		{UpdateID: 10, Kind: "channel_post", Message: json.RawMessage(`{ "chat": {"id": 42},  "text": "a" }`)},
		{UpdateID: 12, Kind: "channel_post", Message: json.RawMessage(`{"text":"b","chat":{"id":42}}`)},
	}
	if err := s.Sync(context.Background(), entries); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	wantCalls := []string{"pull", "add", "status", "commit:Sync updates", "push"}
	if !reflect.DeepEqual(repo.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", repo.calls, wantCalls)
	}

	files := map[string]string{
		"10.json": `{"chat":{"id":42},"text":"a"}`,
		"12.json": `{"text":"b","chat":{"id":42}}`,
	}
	for name, want := range files {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("%s = %s, want %s", name, data, want)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if perm := info.Mode().Perm(); perm&0o644 != 0o644 {
			t.Errorf("%s mode = %v, want at least 0644", name, perm)
		}
	}
}

func TestRepoSync_EmptyBatch(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{changed: true}
	s := mirror.NewRepoSync(repo, t.TempDir(), "Sync updates", logger.Discard())
	if err := s.Sync(context.Background(), nil); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(repo.calls) != 0 {
		t.Errorf("calls = %v, want none", repo.calls)
	}
}

func TestRepoSync_NothingToCommit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo := &fakeRepo{changed: false}
	s := mirror.NewRepoSync(repo, dir, "Sync updates", logger.Discard())

	entries := []mirror.Entry{{UpdateID: 3, Message: json.RawMessage(`{"chat":{"id":1}}`)}}
	if err := s.Sync(context.Background(), entries); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	wantCalls := []string{"pull", "add", "status"}
	if !reflect.DeepEqual(repo.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", repo.calls, wantCalls)
	}
}

func TestRepoSync_Failures(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	tests := []struct {
		failOn    string
		wantCalls []string
		wantFile  bool
	}{
		{failOn: "pull", wantCalls: []string{"pull"}},
		{failOn: "add", wantCalls: []string{"pull", "add"}, wantFile: true},
		{failOn: "commit:msg", wantCalls: []string{"pull", "add", "status", "commit:msg"}, wantFile: true},
		{failOn: "push", wantCalls: []string{"pull", "add", "status", "commit:msg", "push"}, wantFile: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.failOn, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			repo := &fakeRepo{changed: true, failOn: tt.failOn, err: errBoom}
			s := mirror.NewRepoSync(repo, dir, "msg", logger.Discard())

			err := s.Sync(context.Background(), []mirror.Entry{{UpdateID: 1, Message: json.RawMessage(`{}`)}})
			if !errors.Is(err, errBoom) {
				t.Fatalf("Sync() error = %v, want %v", err, errBoom)
			}
			if !reflect.DeepEqual(repo.calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", repo.calls, tt.wantCalls)
			}
			_, statErr := os.Stat(filepath.Join(dir, "1.json"))
			if gotFile := statErr == nil; gotFile != tt.wantFile {
				t.Errorf("file written = %v, want %v", gotFile, tt.wantFile)
			}
		})
	}
}
