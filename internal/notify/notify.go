// Package notify delivers best-effort pipeline outcome notifications.
package notify

import (
	"context"
	"time"
)

// Outcome describes the result of one pipeline run for notification.
type Outcome struct {
	// Success reports whether the post was published.
	Success bool

	Content   string
	WordCount int

	// Error holds the failure reason when Success is false.
	Error string

	Time time.Time
}

// Notifier sends a side-channel alert of a pipeline outcome. Delivery is
// best effort; callers must not fail a run on a notification error.
type Notifier interface {
	NotifyOutcome(ctx context.Context, outcome Outcome) error
}

// Nop is a Notifier that does nothing, used when no email account is
// configured.
type Nop struct{}

func (Nop) NotifyOutcome(ctx context.Context, outcome Outcome) error {
	return nil
}
