package core

import (
	"sync"
	"time"
)

const (
	// TimestampLayout is the store key format, microsecond precision.
	TimestampLayout = "2006-01-02 15:04:05.000000"
	// DisplayLayout is the label shown on the history page.
	DisplayLayout = "15:04"
)

// Message is one submitted record.
type Message struct {
	Username  string
	Message   string
	Timestamp string
}

// NewMessage validates the submitted fields and stamps the record.
func NewMessage(username, message string, at time.Time) (Message, error) {
	if username == "" || message == "" {
		return Message{}, ErrInvalidSubmission
	}
	return Message{
		Username:  username,
		Message:   message,
		Timestamp: FormatTimestamp(at),
	}, nil
}

// FormatTimestamp renders t as a store key.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// DisplayLabel converts a store key to its HH:MM label.
func DisplayLabel(ts string) (string, error) {
	t, err := time.Parse(TimestampLayout, ts)
	if err != nil {
		return "", err
	}
	return t.Format(DisplayLayout), nil
}

// Clock issues submission times. Successive calls never return the same
// microsecond, so records stamped by one process do not share a key.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock returns a clock over now; nil means time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Now returns the current time truncated to microseconds, bumped past the
// previously issued value when needed.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
