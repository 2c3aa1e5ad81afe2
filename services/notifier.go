package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Notification is a best-effort message about a booking
type Notification struct {
	Event   string `json:"event,omitempty"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Notifier delivers notifications to the notification collaborator
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// HTTPNotifier posts notifications as JSON to the notification service
type HTTPNotifier struct {
	url        string
	httpClient *http.Client
}

// NewHTTPNotifier creates a notifier posting to url
func NewHTTPNotifier(url string, timeout time.Duration) *HTTPNotifier {
	return &HTTPNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Notify sends n to the notification endpoint
func (n *HTTPNotifier) Notify(ctx context.Context, notification Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call notification endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notification endpoint returned status %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}

// LogNotifier writes notifications to the log instead of delivering them
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs n
func (n LogNotifier) Notify(ctx context.Context, notification Notification) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification",
		slog.String("event", notification.Event),
		slog.String("to", notification.To),
		slog.String("subject", notification.Subject),
		slog.String("text", notification.Text),
	)
	return nil
}

// NotificationDispatcher delivers notifications in the background.
// Each delivery is bounded by timeout; failures are logged and dropped.
type NotificationDispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewNotificationDispatcher creates a dispatcher for notifier
func NewNotificationDispatcher(notifier Notifier, timeout time.Duration, logger *slog.Logger) *NotificationDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &NotificationDispatcher{notifier: notifier, timeout: timeout, logger: logger}
}

// Dispatch sends n without blocking the caller. A nil dispatcher drops n.
func (d *NotificationDispatcher) Dispatch(n Notification) {
	if d == nil || d.notifier == nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notifier panic", slog.Any("panic", r), slog.String("event", n.Event))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.Notify(ctx, n); err != nil {
			d.logger.Warn("notification failed",
				slog.String("event", n.Event),
				slog.String("to", n.To),
				slog.Any("error", err),
			)
		}
	}()
}

// Wait blocks until all in-flight notifications have finished
func (d *NotificationDispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
