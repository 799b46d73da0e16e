package slogpretty

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHandlerHandle(t *testing.T) {
	bufWo := bytes.NewBuffer(nil)
	bufWe := bytes.NewBuffer(nil)

	h := &Handler{
		We:  &lockedWriter{w: bufWe},
		Wo:  &lockedWriter{w: bufWo},
		Lvl: slog.LevelDebug,
		Goa: make([]GroupOrAttrs, 0),
	}

	record := slog.Record{
		Time:    time.Date(2024, 6, 26, 0, 0, 0, 0, time.UTC),
		Message: "::1",
		Level:   slog.LevelDebug,
	}
	record.Add("method", http.MethodGet)
	record.Add("status", http.StatusOK)
	record.Add("latency", 2*time.Second)
	record.Add("location", "../foo")
	record.Add(slog.Group("foo", slog.String("bar", "bar")))

	require.NoError(t, h.Handle(context.Background(), record))
	record.Level = slog.LevelInfo
	require.NoError(t, h.Handle(context.Background(), record))
	record.Level = slog.LevelWarn
	require.NoError(t, h.Handle(context.Background(), record))
	record.Level = slog.LevelError
	require.NoError(t, h.Handle(context.Background(), record))
	record.Message = "unknown"
	require.NoError(t, h.Handle(context.Background(), record))

	require.NotZero(t, bufWo.Len())
	require.NotZero(t, bufWe.Len())
}

func TestHandlerWithAttrsAndGroup(t *testing.T) {
	bufWo := bytes.NewBuffer(nil)
	h := &Handler{We: &lockedWriter{w: bufWo}, Wo: &lockedWriter{w: bufWo}, Lvl: slog.LevelDebug}

	grouped := h.WithGroup("req").WithAttrs([]slog.Attr{slog.String("id", "abc")})
	record := slog.Record{Message: "hello", Level: slog.LevelInfo, Time: time.Now()}
	require.NoError(t, grouped.Handle(context.Background(), record))
	require.Contains(t, bufWo.String(), "req.id=")
}

func TestHandlerEnabled(t *testing.T) {
	h := &Handler{Lvl: slog.LevelWarn}
	require.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	require.True(t, h.Enabled(context.Background(), slog.LevelError))
}
