// Package notify is the storefront's toast-style notification sink. It is
// fire-and-forget: callers never wait on delivery and no failure here is
// ever surfaced back to the operation that raised the notification.
package notify

import (
	"context"
	"io"
	"log"
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Event is one notification addressed to a basket owner (account ID or
// device ID).
type Event struct {
	Recipient string    `json:"recipient"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// LogNotifier writes notifications to a standard logger.
type LogNotifier struct {
	logger *log.Logger
}

func NewLog(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, e Event) {
	n.logger.Printf("notify level=%s recipient=%s msg=%q", e.Level, e.Recipient, e.Message)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Info, Success and Error stamp the event time and dispatch.
func Info(ctx context.Context, n Notifier, recipient, message string) {
	n.Notify(ctx, Event{Recipient: recipient, Level: LevelInfo, Message: message, At: time.Now().UTC()})
}

func Success(ctx context.Context, n Notifier, recipient, message string) {
	n.Notify(ctx, Event{Recipient: recipient, Level: LevelSuccess, Message: message, At: time.Now().UTC()})
}

func Error(ctx context.Context, n Notifier, recipient, message string) {
	n.Notify(ctx, Event{Recipient: recipient, Level: LevelError, Message: message, At: time.Now().UTC()})
}
