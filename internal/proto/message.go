package proto

import "github.com/vovakirdan/wireboard/internal/core"

// Frame is the JSON text frame carried on the notification channel.
type Frame struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// FrameFromMessage maps a record to its wire form.
func FrameFromMessage(m core.Message) Frame {
	return Frame{
		Username:  m.Username,
		Message:   m.Message,
		Timestamp: m.Timestamp,
	}
}

// Record maps the frame back to a record.
func (f Frame) Record() core.Message {
	return core.Message{
		Username:  f.Username,
		Message:   f.Message,
		Timestamp: f.Timestamp,
	}
}

// Valid reports whether all fields are present.
func (f Frame) Valid() bool {
	return f.Username != "" && f.Message != "" && f.Timestamp != ""
}
