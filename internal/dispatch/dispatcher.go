// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"notifyd/internal/adapters"
	"notifyd/internal/common/config"
	commonerrors "notifyd/internal/common/errors"
	"notifyd/internal/common/logger"
	"notifyd/internal/common/metrics"
	"notifyd/internal/common/observability"
	"notifyd/internal/models"
	"notifyd/internal/prefs"
	"notifyd/internal/render"
	"notifyd/internal/store"
	"notifyd/pkg/backoff"
)

// SubmitResult reports the accepted notification id. Duplicate is set when an
// idempotency key was already bound and no new notification was created.
type SubmitResult struct {
	NotificationID string `json:"notification_id"`
	Duplicate      bool   `json:"duplicate,omitempty"`
}

// Dispatcher validates submissions, enqueues accepted notifications and runs
// the worker pool that drives delivery attempts and retries.
type Dispatcher struct {
	cfg      config.DispatchConfig
	dir      store.Directory
	idem     store.IdempotencyStore
	queue    *Queue
	tracker  *Tracker
	adapters map[models.Channel]adapters.Adapter
	obs      *observability.Observability
	logger   logger.Logger

	wg       sync.WaitGroup
	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

func NewDispatcher(
	cfg config.DispatchConfig,
	dir store.Directory,
	idem store.IdempotencyStore,
	tracker *Tracker,
	channelAdapters []adapters.Adapter,
	obs *observability.Observability,
	log logger.Logger,
) *Dispatcher {
	byChannel := make(map[models.Channel]adapters.Adapter, len(channelAdapters))
	for _, a := range channelAdapters {
		byChannel[a.Channel()] = a
	}
	if obs == nil {
		obs = &observability.Observability{}
	}
	return &Dispatcher{
		cfg:      cfg,
		dir:      dir,
		idem:     idem,
		queue:    NewQueue(),
		tracker:  tracker,
		adapters: byChannel,
		obs:      obs,
		logger:   log,
		timers:   make(map[string]*time.Timer),
	}
}

// Start launches the worker pool. Workers exit when the queue is closed and
// drained.
func (d *Dispatcher) Start() {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.runWorker(i)
	}
	d.logger.Info("dispatcher started", map[string]interface{}{
		"workers":      d.cfg.Workers,
		"max_attempts": d.cfg.MaxAttempts,
	})
}

// Stop closes the queue, waits for workers to drain it, then cancels any
// retry timers still pending. Notifications whose retry never fires stay in
// sending; on restart they are gone with the rest of the in-process state.
func (d *Dispatcher) Stop() {
	d.queue.Close()
	d.wg.Wait()

	d.timersMu.Lock()
	for id, timer := range d.timers {
		timer.Stop()
		delete(d.timers, id)
	}
	d.timersMu.Unlock()

	d.logger.Info("dispatcher stopped", nil)
}

// Submit validates the request and either enqueues a new notification or,
// for a replayed idempotency key, returns the previously bound id.
func (d *Dispatcher) Submit(ctx context.Context, req *models.SendRequest) (*SubmitResult, error) {
	res, err := d.submit(ctx, req)

	channel := req.Channel.String()
	switch {
	case err != nil:
		metrics.SubmissionsTotal.WithLabelValues(channel, "rejected").Inc()
	case res.Duplicate:
		metrics.SubmissionsTotal.WithLabelValues(channel, "duplicate").Inc()
	default:
		metrics.SubmissionsTotal.WithLabelValues(channel, "accepted").Inc()
	}
	return res, err
}

// Status returns a snapshot of the notification, including attempt history.
func (d *Dispatcher) Status(id string) (*models.Notification, error) {
	return d.tracker.Get(id)
}

func (d *Dispatcher) submit(ctx context.Context, req *models.SendRequest) (*SubmitResult, error) {
	if !req.Channel.Valid() {
		return nil, commonerrors.NewUnknownChannelError(req.Channel.String())
	}
	if _, ok := d.adapters[req.Channel]; !ok {
		return nil, commonerrors.NewUnknownChannelError(req.Channel.String())
	}
	if req.AppID == "" {
		return nil, commonerrors.NewValidationFailedError("app_id is required")
	}
	if req.Priority == "" {
		req.Priority = models.PriorityNormal
	}
	if !req.Priority.Valid() {
		return nil, commonerrors.NewValidationFailedError("unknown priority: " + req.Priority.String())
	}

	app, err := d.dir.Application(ctx, req.AppID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, commonerrors.NewApplicationNotFoundError(req.AppID)
		}
		return nil, err
	}
	if !app.Enabled {
		return nil, commonerrors.NewApplicationDisabledError(req.AppID)
	}

	if req.OverrideURL != "" {
		if !d.cfg.AllowDeliveryOverride {
			return nil, commonerrors.NewOverrideNotAllowedError()
		}
		if req.Channel != models.ChannelWebhook {
			return nil, commonerrors.NewValidationFailedError("override_url applies to the webhook channel only")
		}
	}

	content, err := d.resolveContent(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := d.checkRecipient(ctx, req); err != nil {
		return nil, err
	}

	id := uuid.New().String()

	if req.IdempotencyKey != "" {
		boundID, created, reserveErr := d.idem.Reserve(ctx, req.AppID, req.IdempotencyKey, id)
		if reserveErr != nil {
			return nil, commonerrors.NewIdempotencyStoreFailedError(reserveErr)
		}
		if !created {
			return &SubmitResult{NotificationID: boundID, Duplicate: true}, nil
		}
	}

	n := &models.Notification{
		NotificationID: id,
		AppID:          req.AppID,
		UserID:         req.UserID,
		TemplateID:     req.TemplateID,
		Channel:        req.Channel,
		Priority:       req.Priority,
		Status:         models.StatusPending,
		Category:       req.Category,
		Content:        content,
		Bindings:       req.Bindings,
		IdempotencyKey: req.IdempotencyKey,
		OverrideURL:    req.OverrideURL,
		CreatedAt:      time.Now().UTC(),
	}

	d.tracker.Create(n)
	if err := d.queue.Enqueue(n); err != nil {
		return nil, err
	}

	d.logger.Debug("notification accepted", map[string]interface{}{
		"notification_id": id,
		"app_id":          req.AppID,
		"channel":         req.Channel.String(),
		"priority":        req.Priority.String(),
	})
	return &SubmitResult{NotificationID: id}, nil
}

// resolveContent renders the referenced template or escapes inline content
// for the requested channel.
func (d *Dispatcher) resolveContent(ctx context.Context, req *models.SendRequest) (*models.Content, error) {
	if req.TemplateID == "" {
		if req.Subject == "" && req.Body == "" {
			return nil, commonerrors.NewValidationFailedError("either template_id or inline content is required")
		}
		return &models.Content{
			Subject: render.EscapeForChannel(req.Channel, req.Subject),
			Body:    render.EscapeForChannel(req.Channel, req.Body),
		}, nil
	}

	tmpl, err := d.dir.Template(ctx, req.AppID, req.TemplateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, commonerrors.NewTemplateNotFoundError(req.TemplateID)
		}
		return nil, err
	}

	if tmpl.Channel != req.Channel {
		if !req.OverrideChannel {
			return nil, commonerrors.NewTemplateMismatchError(
				"template channel " + tmpl.Channel.String() + " does not match requested channel " + req.Channel.String())
		}
		// re-target so escaping follows the requested channel
		retargeted := *tmpl
		retargeted.Channel = req.Channel
		tmpl = &retargeted
	}

	content, err := render.Render(tmpl, req.Bindings)
	if err != nil {
		var missing *render.MissingVariableError
		if errors.As(err, &missing) {
			return nil, commonerrors.NewMissingVariableError(missing.Variable)
		}
		return nil, err
	}
	return content, nil
}

// checkRecipient enforces recipient existence and channel preferences. A
// direct webhook send with an override URL involves no recipient record and
// skips both checks.
func (d *Dispatcher) checkRecipient(ctx context.Context, req *models.SendRequest) error {
	if req.Channel == models.ChannelWebhook && req.OverrideURL != "" {
		return nil
	}
	if req.UserID == "" {
		return commonerrors.NewValidationFailedError("user_id is required for channel " + req.Channel.String())
	}

	user, err := d.dir.User(ctx, req.AppID, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return commonerrors.NewUserNotFoundError(req.UserID)
		}
		return err
	}

	if !prefs.IsAllowed(user.Preferences, req.Channel, req.Category) {
		return commonerrors.NewPreferenceDeniedError(req.UserID, req.Channel.String())
	}
	return nil
}

func (d *Dispatcher) runWorker(id int) {
	defer d.wg.Done()
	for {
		n, ok := d.queue.Dequeue()
		if !ok {
			return
		}
		d.process(n)
	}
}

// process drives one delivery attempt and applies the outcome to the
// lifecycle. Errors past this point never surface to the submitter; they are
// recorded in the attempt history instead.
func (d *Dispatcher) process(n *models.Notification) {
	if err := d.tracker.Claim(n.NotificationID); err != nil {
		d.logger.Warn("claim failed", map[string]interface{}{
			"notification_id": n.NotificationID,
			"error":           err.Error(),
		})
		return
	}

	result := d.attempt(n)
	channel := n.Channel.String()
	metrics.DeliveryAttemptsTotal.WithLabelValues(channel, result.Outcome.String()).Inc()
	d.obs.RecordDispatch(context.Background(), channel, result.Outcome.String())

	att := models.DeliveryAttempt{
		Timestamp:  time.Now().UTC(),
		Outcome:    result.Outcome,
		Detail:     result.Detail,
		StatusCode: result.StatusCode,
		Latency:    result.Latency,
	}

	switch result.Outcome {
	case models.OutcomeSuccess:
		d.recordFinal(n, func() error { return d.tracker.RecordDelivered(n.NotificationID, att) })
	case models.OutcomePermanentFailure:
		d.recordFinal(n, func() error { return d.tracker.RecordPermanent(n.NotificationID, att) })
	case models.OutcomeUndeliverable:
		d.recordFinal(n, func() error { return d.tracker.MarkUndeliverable(n.NotificationID) })
	case models.OutcomeTransientFailure:
		count, err := d.tracker.RecordTransient(n.NotificationID, att)
		if err != nil {
			d.logger.Error("recording transient attempt failed", map[string]interface{}{
				"notification_id": n.NotificationID,
				"error":           err.Error(),
			})
			return
		}
		if count >= d.cfg.MaxAttempts {
			d.recordFinal(n, func() error { return d.tracker.MarkFailed(n.NotificationID) })
			return
		}
		d.scheduleRetry(n, count)
	}
}

// attempt resolves the delivery target and invokes the channel adapter under
// the configured attempt timeout.
func (d *Dispatcher) attempt(n *models.Notification) *adapters.Result {
	adapter, ok := d.adapters[n.Channel]
	if !ok {
		return &adapters.Result{
			Outcome: models.OutcomePermanentFailure,
			Detail:  "no adapter registered for channel " + n.Channel.String(),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.GetDuration(d.cfg.AttemptTimeout))
	defer cancel()

	target, err := d.resolveTarget(ctx, n)
	if err != nil {
		// directory outage, retry rather than fail the notification
		return &adapters.Result{
			Outcome: models.OutcomeTransientFailure,
			Detail:  "target resolution failed: " + err.Error(),
		}
	}

	start := time.Now()
	result := adapter.Attempt(ctx, n, n.Content, target)
	elapsed := time.Since(start)
	if result.Latency == 0 {
		result.Latency = elapsed
	}

	metrics.AttemptDuration.WithLabelValues(n.Channel.String()).Observe(elapsed.Seconds())
	d.obs.RecordDispatchDuration(context.Background(), elapsed, n.Channel.String())
	return result
}

func (d *Dispatcher) resolveTarget(ctx context.Context, n *models.Notification) (*adapters.Target, error) {
	app, err := d.dir.Application(ctx, n.AppID)
	if err != nil {
		return nil, err
	}

	target := &adapters.Target{App: app}
	if n.UserID != "" {
		user, err := d.dir.User(ctx, n.AppID, n.UserID)
		if err != nil {
			return nil, err
		}
		target.User = user
	}
	return target, nil
}

// scheduleRetry re-enqueues the notification at the tail of its lane after an
// exponential backoff delay.
func (d *Dispatcher) scheduleRetry(n *models.Notification, attemptCount int) {
	delay := backoffDelay(d.cfg, attemptCount)
	metrics.RetriesScheduledTotal.WithLabelValues(n.Channel.String()).Inc()

	d.logger.Debug("retry scheduled", map[string]interface{}{
		"notification_id": n.NotificationID,
		"attempt":         attemptCount,
		"delay_ms":        delay.Milliseconds(),
	})

	d.timersMu.Lock()
	d.timers[n.NotificationID] = time.AfterFunc(delay, func() {
		d.timersMu.Lock()
		delete(d.timers, n.NotificationID)
		d.timersMu.Unlock()

		if err := d.queue.Enqueue(n); err != nil {
			d.logger.Warn("retry dropped, queue closed", map[string]interface{}{
				"notification_id": n.NotificationID,
			})
		}
	})
	d.timersMu.Unlock()
}

func backoffDelay(cfg config.DispatchConfig, attemptCount int) time.Duration {
	return backoff.Delay(
		config.GetDuration(cfg.BaseRetryDelay),
		attemptCount-1,
		config.GetDuration(cfg.MaxRetryDelay),
	)
}

func (d *Dispatcher) recordFinal(n *models.Notification, fn func() error) {
	if err := fn(); err != nil {
		d.logger.Error("recording final state failed", map[string]interface{}{
			"notification_id": n.NotificationID,
			"error":           err.Error(),
		})
	}
}
