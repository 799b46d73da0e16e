package triex

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufHandler struct {
	buf *bytes.Buffer
}

func (h *bufHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *bufHandler) Handle(_ context.Context, r slog.Record) error {
	h.buf.WriteString(r.Message)
	return nil
}
func (h *bufHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *bufHandler) WithGroup(string) slog.Handler      { return h }

func TestRecoveryRecoversAndWrites500(t *testing.T) {
	buf := &bytes.Buffer{}
	r := New(WithMiddleware(CustomRecoveryWithLogHandler(&bufHandler{buf: buf}, DefaultHandleRecovery)))
	_, err := r.Handle(http.MethodGet, "/boom", func(c *Context) {
		panic("kaboom")
	})
	require.NoError(t, err)
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "Recovered from PANIC")
}

func TestRecoveryDoesNotOverwriteAlreadyWrittenResponse(t *testing.T) {
	buf := &bytes.Buffer{}
	r := New(WithMiddleware(CustomRecoveryWithLogHandler(&bufHandler{buf: buf}, func(c *Context, _ any) {
		t.Fatal("handle should not be called once a response was already written")
	})))
	_, err := r.Handle(http.MethodGet, "/boom", func(c *Context) {
		c.Writer().WriteHeader(http.StatusTeapot)
		panic("kaboom")
	})
	require.NoError(t, err)
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestRecoveryRepanicsOnAbortHandler(t *testing.T) {
	r := New(WithMiddleware(Recovery()))
	_, err := r.Handle(http.MethodGet, "/boom", func(c *Context) {
		panic(http.ErrAbortHandler)
	})
	require.NoError(t, err)
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	assert.Panics(t, func() {
		r.ServeHTTP(w, req)
	})
}
