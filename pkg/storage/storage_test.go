package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	errs "github.com/matzehuels/blokdust/pkg/errors"
	"github.com/matzehuels/blokdust/pkg/observability"
)

// testStoreContract runs the behavior every backend must share.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	id, err := s.Save(ctx, "", []byte("first"))
	if err != nil {
		t.Fatalf("Save(new): %v", err)
	}
	if id == "" {
		t.Fatal("Save(new) returned empty id")
	}
	got, err := s.Load(ctx, id)
	if err != nil || string(got) != "first" {
		t.Fatalf("Load(%s) = %q, %v", id, got, err)
	}

	again, err := s.Save(ctx, id, []byte("second"))
	if err != nil || again != id {
		t.Fatalf("Save(%s) = %q, %v, want same id", id, again, err)
	}
	got, _ = s.Load(ctx, id)
	if string(got) != "second" {
		t.Errorf("Load after overwrite = %q, want second", got)
	}

	other, err := s.Save(ctx, "", []byte("third"))
	if err != nil || other == id {
		t.Errorf("Save(new) = %q, %v, want a fresh id", other, err)
	}

	_, err = s.Load(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}
	if !errs.Is(err, errs.ErrCodeCompositionNotFound) {
		t.Errorf("Load(missing) code = %s", errs.GetCode(err))
	}
	if Retryable(err) {
		t.Error("not found must not be retryable")
	}

	if _, err := s.Save(ctx, "../escape", []byte("x")); !errs.Is(err, errs.ErrCodeInvalidID) {
		t.Errorf("Save(../escape) error = %v, want INVALID_ID", err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	testStoreContract(t, m)
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestMemoryCopies(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	id, _ := m.Save(context.Background(), "x", buf)
	buf[0] = 'z'
	got, _ := m.Load(context.Background(), id)
	if string(got) != "abc" {
		t.Errorf("Load() = %q, stored payload aliased caller buffer", got)
	}
}

func TestFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "store")
	f, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	testStoreContract(t, f)

	ids, err := f.List()
	if err != nil || len(ids) != 2 {
		t.Fatalf("List() = %v, %v, want 2 ids", ids, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	n, err := f.Clear()
	if err != nil || n != 2 {
		t.Errorf("Clear() = %d, %v, want 2", n, err)
	}
	if ids, _ := f.List(); len(ids) != 0 {
		t.Errorf("List() after Clear = %v", ids)
	}
	if f.Path() != dir {
		t.Errorf("Path() = %q, want %q", f.Path(), dir)
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	transient := transport("test", errors.New("connection reset"))

	tests := []struct {
		name      string
		failures  int
		err       error
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, nil, 3, 1, false},
		{"recovers", 2, transient, 3, 3, false},
		{"gives up", 5, transient, 2, 2, true},
		{"not retryable", 5, notFound("test", "x"), 3, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(ctx, tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("Retry() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error {
		return transport("test", errors.New("down"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
}

type recordingStorageHooks struct {
	observability.NoopStorageHooks
	events []string
}

func (h *recordingStorageHooks) OnSave(_ context.Context, backend string, size int, _ time.Duration, err error) {
	h.events = append(h.events, fmt.Sprintf("save:%s:%d:%v", backend, size, err == nil))
}

func (h *recordingStorageHooks) OnLoad(_ context.Context, backend string, size int, _ time.Duration, err error) {
	h.events = append(h.events, fmt.Sprintf("load:%s:%d:%v", backend, size, err == nil))
}

func TestInstrument(t *testing.T) {
	hooks := &recordingStorageHooks{}
	observability.SetStorageHooks(hooks)
	t.Cleanup(observability.Reset)

	s := Instrument("memory", NewMemory())
	ctx := context.Background()
	id, _ := s.Save(ctx, "", []byte("abcd"))
	_, _ = s.Load(ctx, id)
	_, _ = s.Load(ctx, "nope")

	want := []string{"save:memory:4:true", "load:memory:4:true", "load:memory:0:false"}
	if !slices.Equal(hooks.events, want) {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Driver: "memory"}, false},
		{"file upper case", Config{Driver: "FILE"}, false},
		{"unknown", Config{Driver: "ftp"}, true},
		{"empty", Config{}, true},
		{"redis without url", Config{Driver: "redis"}, true},
		{"redis", Config{Driver: "redis", RedisURL: "redis://localhost:6379/0"}, false},
		{"mongo without uri", Config{Driver: "mongo"}, true},
		{"s3 without bucket", Config{Driver: "s3"}, true},
		{"http without url", Config{Driver: "http"}, true},
		{"negative timeout", Config{Driver: "memory", Timeout: -time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{Driver: "file", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(file): %v", err)
	}
	defer s.Close()
	if _, ok := s.(*instrumented); !ok {
		t.Errorf("Open() = %T, want instrumented store", s)
	}
	testStoreContract(t, s)

	if _, err := Open(ctx, Config{Driver: "nope"}); err == nil {
		t.Error("Open(nope) succeeded")
	}
}

func TestNewRedisBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "http://not-redis", "", 0)
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("NewRedis() error = %v, want INVALID_INPUT", err)
	}
}

func TestRedisKey(t *testing.T) {
	r := newRedis(nil, "", 0)
	if got := r.key("abc"); got != DefaultRedisPrefix+"abc" {
		t.Errorf("key() = %q", got)
	}
	r = newRedis(nil, "test:", time.Minute)
	if got := r.key("abc"); got != "test:abc" {
		t.Errorf("key() = %q", got)
	}
}

func TestMongoErr(t *testing.T) {
	if err := mongoErr(context.DeadlineExceeded); !Retryable(err) {
		t.Errorf("mongoErr(deadline) = %v, want retryable", err)
	}
	if err := mongoErr(errors.New("write conflict")); Retryable(err) {
		t.Errorf("mongoErr(conflict) = %v, want not retryable", err)
	}
	if _, err := NewMongo(context.Background(), "", "", ""); err == nil {
		t.Error("NewMongo(empty uri) succeeded")
	}
}
