package logbuf

import (
	"bytes"
	"log/slog"
	"testing"
	"time"
)

func TestBufferWraps(t *testing.T) {
	b := New(3)
	for i, msg := range []string{"one", "two", "three", "four"} {
		b.Write(Entry{Time: time.Unix(int64(i), 0), Level: "INFO", Message: msg})
	}

	got := b.Query(time.Time{}, slog.LevelDebug, 0)
	if len(got) != 3 {
		t.Fatalf("got %d entries", len(got))
	}
	if got[0].Message != "two" || got[2].Message != "four" {
		t.Errorf("order: %q .. %q", got[0].Message, got[2].Message)
	}
}

func TestBufferQueryFilters(t *testing.T) {
	b := New(10)
	b.Write(Entry{Time: time.Unix(1, 0), Level: "DEBUG", Message: "noise"})
	b.Write(Entry{Time: time.Unix(2, 0), Level: "ERROR", Message: "boom"})
	b.Write(Entry{Time: time.Unix(3, 0), Level: "INFO", Message: "late"})

	if got := b.Query(time.Time{}, slog.LevelWarn, 0); len(got) != 1 || got[0].Message != "boom" {
		t.Errorf("level filter: %v", got)
	}
	if got := b.Query(time.Unix(3, 0), slog.LevelDebug, 0); len(got) != 1 || got[0].Message != "late" {
		t.Errorf("since filter: %v", got)
	}
	if got := b.Query(time.Time{}, slog.LevelDebug, 2); len(got) != 2 || got[1].Message != "late" {
		t.Errorf("limit keeps newest: %v", got)
	}
}

func TestHandlerCapturesAttrs(t *testing.T) {
	buf := New(10)
	var sink bytes.Buffer
	logger := slog.New(NewHandler(slog.NewJSONHandler(&sink, nil), buf))

	logger.With("ticket", "t1").WithGroup("api").Info("closed", "status", "closed")

	got := buf.Query(time.Time{}, slog.LevelDebug, 0)
	if len(got) != 1 {
		t.Fatalf("got %d entries", len(got))
	}
	if got[0].Attrs["ticket"] != "t1" {
		t.Errorf("attrs = %v", got[0].Attrs)
	}
	if got[0].Attrs["api.status"] != "closed" {
		t.Errorf("grouped attr missing: %v", got[0].Attrs)
	}
}

func TestHandlerCapturesBelowInnerLevel(t *testing.T) {
	buf := New(10)
	var sink bytes.Buffer
	inner := slog.NewJSONHandler(&sink, &slog.HandlerOptions{Level: slog.LevelError})
	logger := slog.New(NewHandler(inner, buf))

	logger.Debug("quiet")

	if got := buf.Query(time.Time{}, slog.LevelDebug, 0); len(got) != 1 {
		t.Fatalf("buffer should capture all levels, got %d", len(got))
	}
	if sink.Len() != 0 {
		t.Error("inner handler should have filtered the record")
	}
}
