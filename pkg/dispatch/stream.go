package dispatch

import (
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"sync"
)

// ContentTypeNDJSON is the media type of the progress stream.
const ContentTypeNDJSON = "application/x-ndjson"

// Sink receives progress events in order. An error stops the dispatch loop.
type Sink interface {
	Emit(Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event) error

// Emit implements Sink.
func (f SinkFunc) Emit(e Event) error { return f(e) }

// SetStreamHeaders prepares a response for an unbuffered NDJSON stream.
func SetStreamHeaders(h http.Header) {
	h.Set("Content-Type", ContentTypeNDJSON)
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("X-Accel-Buffering", "no")
	h.Set("Connection", "keep-alive")
}

// StreamEncoder writes each event as one JSON line and flushes it immediately
// when the writer supports flushing.
type StreamEncoder struct {
	w   io.Writer
	enc *json.Encoder
}

// NewStreamEncoder creates an encoder writing to w.
func NewStreamEncoder(w io.Writer) *StreamEncoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &StreamEncoder{w: w, enc: enc}
}

// Emit implements Sink.
func (s *StreamEncoder) Emit(e Event) error {
	if err := s.enc.Encode(e); err != nil {
		return err
	}
	return flush(s.w)
}

func flush(w io.Writer) error {
	switch f := w.(type) {
	case interface{ Flush() error }:
		return f.Flush()
	case http.Flusher:
		f.Flush()
	}
	return nil
}

// Collector is an in-memory Sink. It is safe for concurrent use.
type Collector struct {
	events []Event
	mu     sync.Mutex
}

// Emit implements Sink.
func (c *Collector) Emit(e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

// Events returns a copy of everything emitted so far.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.events)
}

// Items returns the item events in emission order.
func (c *Collector) Items() []ItemEvent {
	var items []ItemEvent
	for _, e := range c.Events() {
		if item, ok := e.(ItemEvent); ok {
			items = append(items, item)
		}
	}
	return items
}

// Done returns the done event, if one was emitted.
func (c *Collector) Done() (DoneEvent, bool) {
	for _, e := range c.Events() {
		if done, ok := e.(DoneEvent); ok {
			return done, true
		}
	}
	return DoneEvent{}, false
}

// Tee returns a Sink that emits to every sink in order and stops at the first error.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) error {
		for _, s := range sinks {
			if err := s.Emit(e); err != nil {
				return err
			}
		}
		return nil
	})
}
