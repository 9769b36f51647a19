package internal

import "net/http"

// ResponseWriter records the status and body size of a response and
// reports whether the status line is out. Flush pushes buffered NDJSON lines
// to the client. It is not safe for concurrent use, like the writer it wraps.
type ResponseWriter struct {
	http.ResponseWriter
	status    int
	size      int64
	committed bool
}

// NewResponseWriter wraps w. The status defaults to 200.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader sends the status line once; later calls are dropped.
func (w *ResponseWriter) WriteHeader(code int) {
	if w.committed {
		return
	}
	w.status = code
	w.commit()
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.commit()
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

// Flush commits the status if needed and flushes the underlying writer.
func (w *ResponseWriter) Flush() {
	w.commit()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *ResponseWriter) commit() {
	if !w.committed {
		w.committed = true
		w.ResponseWriter.WriteHeader(w.status)
	}
}

func (w *ResponseWriter) Status() int   { return w.status }
func (w *ResponseWriter) Size() int64   { return w.size }
func (w *ResponseWriter) Written() bool { return w.committed }

// Unwrap lets http.ResponseController reach the original writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
