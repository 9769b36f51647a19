package dispatch

import "time"

// TimestampLayout is the ISO-8601 layout of ItemEvent.Timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// EventType tags a progress event.
type EventType string

const (
	EventStart EventType = "start"
	EventItem  EventType = "item"
	EventDone  EventType = "done"
)

// Status is the outcome of one send.
type Status string

const (
	StatusSent  Status = "sent"
	StatusError Status = "error"
)

// Event is one line of the progress stream.
type Event interface {
	EventType() EventType
}

// StartEvent opens the stream with the number of rows that will be attempted.
type StartEvent struct {
	Type  EventType `json:"type"`
	Total int       `json:"total"`
}

func (StartEvent) EventType() EventType { return EventStart }

// ItemEvent reports the outcome of the send at Index.
type ItemEvent struct {
	Type        EventType `json:"type"`
	To          string    `json:"to"`
	Status      Status    `json:"status"`
	MessageID   string    `json:"messageId,omitempty"`
	Error       string    `json:"error,omitempty"`
	Subject     string    `json:"subject"`
	Timestamp   string    `json:"timestamp"`
	Index       int       `json:"index"`
	Attachments int       `json:"attachments"`
}

func (ItemEvent) EventType() EventType { return EventItem }

// Time parses Timestamp.
func (e ItemEvent) Time() (time.Time, error) {
	return time.Parse(TimestampLayout, e.Timestamp)
}

// DoneEvent closes a completed stream.
type DoneEvent struct {
	Type   EventType `json:"type"`
	Sent   int       `json:"sent"`
	Failed int       `json:"failed"`
}

func (DoneEvent) EventType() EventType { return EventDone }

func newStartEvent(total int) StartEvent {
	return StartEvent{Type: EventStart, Total: total}
}

func newDoneEvent(s Summary) DoneEvent {
	return DoneEvent{Type: EventDone, Sent: s.Sent, Failed: s.Failed}
}

// Summary counts the outcomes of a job. Sent+Failed is the number of items processed.
type Summary struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Processed returns Sent+Failed.
func (s Summary) Processed() int {
	return s.Sent + s.Failed
}

// Complete reports whether every row was processed.
func (s Summary) Complete() bool {
	return s.Processed() == s.Total
}
