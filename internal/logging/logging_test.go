package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Leveler
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEnsureRunID(t *testing.T) {
	ctx, id := EnsureRunID(context.Background())
	if id == "" {
		t.Fatal("EnsureRunID returned empty id")
	}
	if got := RunIDFromContext(ctx); got != id {
		t.Errorf("RunIDFromContext = %q, want %q", got, id)
	}

	// A second call on the same context reuses the existing id.
	ctx2, id2 := EnsureRunID(ctx)
	if id2 != id {
		t.Errorf("EnsureRunID minted a new id %q over existing %q", id2, id)
	}
	if ctx2 != ctx {
		t.Error("EnsureRunID replaced the context when an id was present")
	}
}

func TestEnsureRunID_NilContext(t *testing.T) {
	ctx, id := EnsureRunID(nil)
	if ctx == nil || id == "" {
		t.Errorf("EnsureRunID(nil) = (%v, %q)", ctx, id)
	}
}

func TestRunIDFromContext_Absent(t *testing.T) {
	if got := RunIDFromContext(context.Background()); got != "" {
		t.Errorf("RunIDFromContext on a bare context = %q, want empty", got)
	}
	if got := RunIDFromContext(nil); got != "" {
		t.Errorf("RunIDFromContext(nil) = %q, want empty", got)
	}
}

func TestWithRunLogger(t *testing.T) {
	ctx, log := WithRunLogger(context.Background(), Noop())
	if log == nil {
		t.Fatal("WithRunLogger returned nil logger")
	}
	if RunIDFromContext(ctx) == "" {
		t.Error("WithRunLogger did not attach a run_id")
	}

	// Nil base falls back to the noop logger rather than panicking.
	_, log = WithRunLogger(context.Background(), nil)
	log.Info(context.Background(), "still works")
}

func TestNoopLogger(t *testing.T) {
	log := Noop().With(String("k", "v"))
	ctx := context.Background()
	log.Debug(ctx, "a")
	log.Info(ctx, "b")
	log.Warn(ctx, "c")
	log.Error(ctx, "d", Int("n", 1), Float64("f", 2.5), Any("x", struct{}{}))
}
