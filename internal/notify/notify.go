// Package notify defines the outbound notification event and the sink
// interface the scheduler and tracker emit through. Delivery itself is a
// collaborator concern (see internal/relay).
package notify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// #region types
// Notification is a single "fire this message" event keyed by checkpoint.
type Notification struct {
	ID         string
	Checkpoint string // checkpoint or trigger name, e.g. "wake", "pm_grade", "am_report"
	ChannelID  string // bound channel reference; empty when unbound
	Message    string
	At         time.Time
}

// New builds a notification with a fresh event ID.
func New(checkpoint, channelID, message string, at time.Time) Notification {
	return Notification{
		ID:         uuid.New().String(),
		Checkpoint: checkpoint,
		ChannelID:  channelID,
		Message:    message,
		At:         at,
	}
}

// #endregion types

// #region notifier
// Notifier delivers notifications to the bound channel. Implementations must
// fail fast; the scheduler logs and continues on error.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// #endregion notifier

// #region log-notifier
// LogNotifier writes notifications to the process log. Used when no relay is
// configured and as the delivery sink in tests.
type LogNotifier struct{}

// Send logs the notification and always succeeds.
func (LogNotifier) Send(_ context.Context, n Notification) error {
	log.Printf("[NOTIFY] %s @ %s: %s", n.Checkpoint, n.At.Format("15:04"), n.Message)
	return nil
}

// #endregion log-notifier
