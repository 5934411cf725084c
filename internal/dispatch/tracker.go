// internal/dispatch/tracker.go
package dispatch

import (
	"sync"
	"time"

	"notifyd/internal/archive"
	commonerrors "notifyd/internal/common/errors"
	"notifyd/internal/common/logger"
	"notifyd/internal/models"
)

// Tracker owns the lifecycle state of every notification and its append-only
// attempt history. All delivery-time failures are absorbed here and exposed
// passively through Get; once a notification reaches a terminal state it is
// immutable.
type Tracker struct {
	mu            sync.RWMutex
	notifications map[string]*models.Notification
	archiver      archive.Indexer
	logger        logger.Logger
}

func NewTracker(archiver archive.Indexer, log logger.Logger) *Tracker {
	if archiver == nil {
		archiver = archive.NopIndexer{}
	}
	return &Tracker{
		notifications: make(map[string]*models.Notification),
		archiver:      archiver,
		logger:        log,
	}
}

// Create registers a freshly accepted notification in state pending.
func (t *Tracker) Create(n *models.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notifications[n.NotificationID] = n
}

// Claim marks the item as taken by a worker. The first claim moves
// pending to sending; a retried item is already sending and stays there.
func (t *Tracker) Claim(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	if n.Status.IsFinal() {
		return commonerrors.NewInvalidTransitionError(n.Status.String(), models.StatusSending.String())
	}
	n.Status = models.StatusSending
	return nil
}

// RecordDelivered appends the successful attempt and finishes the
// notification as delivered.
func (t *Tracker) RecordDelivered(id string, att models.DeliveryAttempt) error {
	return t.finishWithAttempt(id, att, models.StatusDelivered)
}

// RecordPermanent appends the non-retryable attempt and finishes the
// notification as failed.
func (t *Tracker) RecordPermanent(id string, att models.DeliveryAttempt) error {
	return t.finishWithAttempt(id, att, models.StatusFailed)
}

// RecordTransient appends a retryable failed attempt while the notification
// stays in sending. Returns the attempt count so the caller can decide
// whether the retry budget is exhausted.
func (t *Tracker) RecordTransient(id string, att models.DeliveryAttempt) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.lookup(id)
	if err != nil {
		return 0, err
	}
	if n.Status != models.StatusSending {
		return 0, commonerrors.NewInvalidTransitionError(n.Status.String(), models.StatusSending.String())
	}

	t.appendAttempt(n, att)
	return n.AttemptCount, nil
}

// MarkFailed finishes a notification whose retry budget ran out. The final
// transient attempt was already recorded, so nothing is appended here.
func (t *Tracker) MarkFailed(id string) error {
	return t.finish(id, models.StatusFailed)
}

// MarkUndeliverable finishes a push-only notification that had no reachable
// recipient. No transport occurred, so no attempt is appended and the count
// stays at zero.
func (t *Tracker) MarkUndeliverable(id string) error {
	return t.finish(id, models.StatusUndeliverable)
}

// Get returns a copy of the notification, including its attempt history.
func (t *Tracker) Get(id string) (*models.Notification, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.notifications[id]
	if !ok {
		return nil, commonerrors.NewNotificationNotFoundError(id)
	}
	return copyNotification(n), nil
}

func (t *Tracker) lookup(id string) (*models.Notification, error) {
	n, ok := t.notifications[id]
	if !ok {
		return nil, commonerrors.NewNotificationNotFoundError(id)
	}
	return n, nil
}

func (t *Tracker) appendAttempt(n *models.Notification, att models.DeliveryAttempt) {
	att.Seq = n.AttemptCount + 1
	if att.Timestamp.IsZero() {
		att.Timestamp = time.Now().UTC()
	}
	n.Attempts = append(n.Attempts, att)
	n.AttemptCount = len(n.Attempts)
	ts := att.Timestamp
	n.LastAttemptAt = &ts
}

func (t *Tracker) finishWithAttempt(id string, att models.DeliveryAttempt, status models.Status) error {
	t.mu.Lock()

	n, err := t.lookup(id)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if n.Status != models.StatusSending {
		t.mu.Unlock()
		return commonerrors.NewInvalidTransitionError(n.Status.String(), status.String())
	}

	t.appendAttempt(n, att)
	t.terminate(n, status)
	snapshot := copyNotification(n)
	t.mu.Unlock()

	go t.archiver.IndexTerminal(snapshot)
	return nil
}

func (t *Tracker) finish(id string, status models.Status) error {
	t.mu.Lock()

	n, err := t.lookup(id)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if n.Status != models.StatusSending {
		t.mu.Unlock()
		return commonerrors.NewInvalidTransitionError(n.Status.String(), status.String())
	}

	t.terminate(n, status)
	snapshot := copyNotification(n)
	t.mu.Unlock()

	go t.archiver.IndexTerminal(snapshot)
	return nil
}

func (t *Tracker) terminate(n *models.Notification, status models.Status) {
	now := time.Now().UTC()
	n.Status = status
	n.CompletedAt = &now

	t.logger.Info("notification finished", map[string]interface{}{
		"notification_id": n.NotificationID,
		"status":          status.String(),
		"attempts":        n.AttemptCount,
	})
}

func copyNotification(n *models.Notification) *models.Notification {
	out := *n
	if n.Attempts != nil {
		out.Attempts = make([]models.DeliveryAttempt, len(n.Attempts))
		copy(out.Attempts, n.Attempts)
	}
	if n.Bindings != nil {
		out.Bindings = make(map[string]string, len(n.Bindings))
		for k, v := range n.Bindings {
			out.Bindings[k] = v
		}
	}
	if n.Content != nil {
		content := *n.Content
		out.Content = &content
	}
	return &out
}
