package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/anatolykoptev/go_ytdlp/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.Record(ctx, Entry{URL: "https://youtu.be/a", VideoID: "a", CommentCount: 12, Status: StatusOK, DurationMs: 3400})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	id2, err := s.Record(ctx, Entry{URL: "https://youtu.be/b", Status: StatusError, Error: "Failed to download comments: yt-dlp exited with code 1"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id1 <= 0 || id2 <= id1 {
		t.Fatalf("unexpected ids %d, %d", id1, id2)
	}

	res, err := s.List(ctx, Query{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Total != 2 || len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d (total %d)", len(res.Entries), res.Total)
	}
	if res.Entries[0].ID != id2 {
		t.Errorf("expected newest first, got id %d", res.Entries[0].ID)
	}
	first := res.Entries[1]
	if first.VideoID != "a" || first.CommentCount != 12 || first.DurationMs != 3400 || first.Status != StatusOK {
		t.Errorf("unexpected entry %+v", first)
	}
	if first.CreatedAt == "" {
		t.Error("expected created_at to be set")
	}
	if res.Entries[0].Error == "" {
		t.Error("expected error text on failed entry")
	}
}

func TestListFilterByStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Record(ctx, Entry{URL: "https://youtu.be/ok", Status: StatusOK}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Record(ctx, Entry{URL: "https://youtu.be/bad", Status: StatusError}); err != nil {
		t.Fatal(err)
	}

	res, err := s.List(ctx, Query{Status: "ERROR"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Total != 1 || len(res.Entries) != 1 || res.Entries[0].Status != StatusError {
		t.Errorf("unexpected filtered result %+v", res)
	}

	res, err = s.List(ctx, Query{Status: "ok", Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(res.Entries) != 2 || res.Total != 3 {
		t.Errorf("expected 2 of 3, got %d of %d", len(res.Entries), res.Total)
	}
}

func TestListInvalidStatus(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.List(context.Background(), Query{Status: "pending"}); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestListEmpty(t *testing.T) {
	s := openTestStore(t)
	res, err := s.List(context.Background(), Query{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Entries == nil {
		t.Error("expected non-nil empty slice")
	}
	if res.Total != 0 {
		t.Errorf("expected total 0, got %d", res.Total)
	}
}

func TestListLimitClamp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < MaxLimit+5; i++ {
		if _, err := s.Record(ctx, Entry{URL: "https://youtu.be/x", Status: StatusOK}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultLimit},
		{-1, DefaultLimit},
		{5, 5},
		{MaxLimit + 50, MaxLimit},
	}
	for _, tt := range tests {
		res, err := s.List(ctx, Query{Limit: tt.limit})
		if err != nil {
			t.Fatalf("List(%d): %v", tt.limit, err)
		}
		if len(res.Entries) != tt.want {
			t.Errorf("limit %d: got %d entries, want %d", tt.limit, len(res.Entries), tt.want)
		}
	}
}

func TestRecordValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Record(ctx, Entry{Status: StatusOK}); err == nil {
		t.Error("expected error when url is missing")
	}
	if _, err := s.Record(ctx, Entry{URL: "https://youtu.be/a", Status: "done"}); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestRecordTruncatesError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	long := strings.Repeat("ошибка ", 1000)
	if _, err := s.Record(ctx, Entry{URL: "https://youtu.be/a", Status: StatusError, Error: long}); err != nil {
		t.Fatal(err)
	}
	res, err := s.List(ctx, Query{})
	if err != nil {
		t.Fatal(err)
	}
	if n := utf8.RuneCountInString(res.Entries[0].Error); n > engine.MaxErrorRunes+1 {
		t.Errorf("error text not capped: %d runes", n)
	}
	if !utf8.ValidString(res.Entries[0].Error) {
		t.Error("truncated error is not valid UTF-8")
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Record(ctx, Entry{URL: "https://youtu.be/a", Status: StatusOK}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	res, err := s.List(ctx, Query{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 {
		t.Errorf("expected 1 row after reopen, got %d", res.Total)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := DefaultPath(); got != "/home/tester/.go_ytdlp/history.db" {
		t.Errorf("DefaultPath = %q", got)
	}
}
