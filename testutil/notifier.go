package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/homehelp/homehelp-api/services"
)

// RecordingNotifier records notifications and optionally fails them
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []services.Notification
	Fail bool
}

// Notify records n, returning an error when Fail is set
func (r *RecordingNotifier) Notify(_ context.Context, n services.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, n)
	if r.Fail {
		return errors.New("notification endpoint unavailable")
	}
	return nil
}

// Sent returns a copy of the recorded notifications
func (r *RecordingNotifier) Sent() []services.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]services.Notification(nil), r.sent...)
}
