// Package notify delivers committed booking changes to interested parties:
// the log, a Redis channel shared by every instance, and websocket clients
// watching a venue's calendar.
package notify

import (
	"context"
	"log/slog"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"golang.org/x/sync/errgroup"
)

// Publisher accepts one notification. service.Notifier has the same shape.
type Publisher interface {
	Publish(ctx context.Context, n model.Notification) error
}

// Logger writes every notification to a slog.Logger.
type Logger struct {
	log *slog.Logger
}

// NewLogger returns a Logger writing to log.
func NewLogger(log *slog.Logger) *Logger {
	return &Logger{log: log}
}

// Publish writes n as one structured log line.
func (l *Logger) Publish(ctx context.Context, n model.Notification) error {
	attrs := []any{"kind", n.Kind, "event_id", n.EventID}
	if n.VenueID != "" {
		attrs = append(attrs, "venue_id", n.VenueID, "date", n.Date, "hours", n.Hours)
	}
	if n.Kind == model.NotifyEventCancelled {
		attrs = append(attrs, "affected_participants", n.AffectedParticipants)
	}
	if n.UserID != "" {
		attrs = append(attrs, "user_id", n.UserID)
	}
	l.log.InfoContext(ctx, "notification", attrs...)
	return nil
}

// Multi fans a notification out to several publishers concurrently and
// returns the first error once all of them finished.
type Multi []Publisher

// Publish delivers n to every sink concurrently and returns the first error.
func (m Multi) Publish(ctx context.Context, n model.Notification) error {
	var g errgroup.Group
	for _, p := range m {
		g.Go(func() error {
			return p.Publish(ctx, n)
		})
	}
	return g.Wait()
}
