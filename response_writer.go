package triex

import (
	"bufio"
	"net"
	"net/http"
)

// ResponseWriter wraps [http.ResponseWriter], additionally tracking whether
// a response has been written and, if so, its status code and size. Unlike
// the richer writer used internally by production routers this module is
// modeled on, it does not distinguish HTTP/1 from HTTP/2 capabilities or
// support broadcasting to multiple underlying writers: this module has no
// notion of cloned, concurrently-flushed contexts.
type ResponseWriter interface {
	http.ResponseWriter
	// Status returns the HTTP status of the response, or 0 if WriteHeader
	// has not been called yet.
	Status() int
	// Size returns the number of bytes already written to the body.
	Size() int
	// Written reports whether the response header has been sent.
	Written() bool
}

type recorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *recorder) WriteHeader(code int) {
	if r.Written() {
		return
	}
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.Written() {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (r *recorder) Status() int {
	return r.status
}

func (r *recorder) Size() int {
	return r.size
}

func (r *recorder) Written() bool {
	return r.status != 0
}

// Unwrap returns the underlying [http.ResponseWriter], letting
// [http.ResponseController] and type assertions like [http.Flusher] or
// [http.Hijacker] reach the concrete writer the net/http server handed us.
func (r *recorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack implements [http.Hijacker] when the underlying writer does.
func (r *recorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}

// Flush implements [http.Flusher] when the underlying writer does.
func (r *recorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		if !r.Written() {
			r.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}
