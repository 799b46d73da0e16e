package triex

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestLoggerLogsStatusAndMethod(t *testing.T) {
	rh := &recordingHandler{}
	r := New(WithMiddleware(Logger(rh)))
	_, err := r.Handle(http.MethodGet, "/users", handleOK("list"))
	require.NoError(t, err)
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Len(t, rh.records, 1)
	rec := rh.records[0]
	assert.Equal(t, slog.LevelInfo, rec.Level)

	var sawStatus, sawMethod bool
	rec.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case LoggerStatusKey:
			sawStatus = a.Value.Int64() == http.StatusOK
		case LoggerMethodKey:
			sawMethod = a.Value.String() == http.MethodGet
		}
		return true
	})
	assert.True(t, sawStatus)
	assert.True(t, sawMethod)
}

func TestLoggerLevelByStatus(t *testing.T) {
	cases := []struct {
		status int
		want   slog.Level
	}{
		{http.StatusOK, slog.LevelInfo},
		{http.StatusFound, slog.LevelDebug},
		{http.StatusNotFound, slog.LevelWarn},
		{http.StatusInternalServerError, slog.LevelError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, level(tc.status))
	}
}

func TestLoggerNilHandlerUsesDefault(t *testing.T) {
	mw := Logger(nil)
	h := mw(func(c *Context) { c.Writer().WriteHeader(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	rt := New()
	require.NoError(t, rt.Build())
	c := rt.newContext(&recorder{ResponseWriter: w}, req, nil, "/")
	assert.NotPanics(t, func() { h(c) })
}
