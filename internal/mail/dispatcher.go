package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/localpop/localpop-backend/pkg/config"
	"github.com/localpop/localpop-backend/pkg/db/models"
	"github.com/localpop/localpop-backend/pkg/logger"
	"github.com/localpop/localpop-backend/pkg/metrics"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultBatchSize    = 20
	defaultMaxAttempts  = 8
	baseBackoff         = 30 * time.Second
	maxBackoff          = 30 * time.Minute
)

// DispatcherParams configure the outbox dispatcher.
type DispatcherParams struct {
	Repo        Repository
	Sender      Sender
	Logger      *logger.Logger
	Metrics     *metrics.MailMetrics
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
	SendTimeout time.Duration
}

// Dispatcher drains pending outbox rows and delivers them with bounded
// retries. A send failure reschedules the row; it never reaches the HTTP
// path that enqueued the message.
type Dispatcher struct {
	repo        Repository
	sender      Sender
	logg        *logger.Logger
	metrics     *metrics.MailMetrics
	interval    time.Duration
	batchSize   int
	maxAttempts int
	sendTimeout time.Duration
}

// NewDispatcher builds a dispatcher.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("mail repository required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Dispatcher{
		repo:        params.Repo,
		sender:      params.Sender,
		logg:        params.Logger,
		metrics:     params.Metrics,
		interval:    interval,
		batchSize:   batch,
		maxAttempts: maxAttempts,
		sendTimeout: params.SendTimeout,
	}, nil
}

// DispatcherParamsFromConfig maps the mail config onto dispatcher params.
func DispatcherParamsFromConfig(cfg config.MailConfig, repo Repository, sender Sender, logg *logger.Logger, m *metrics.MailMetrics) DispatcherParams {
	return DispatcherParams{
		Repo:        repo,
		Sender:      sender,
		Logger:      logg,
		Metrics:     m,
		Interval:    cfg.PollInterval,
		BatchSize:   cfg.BatchSize,
		MaxAttempts: cfg.MaxAttempts,
		SendTimeout: cfg.SendTimeout,
	}
}

// Run polls the outbox until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := d.DrainOnce(ctx); err != nil {
		d.logg.Error(ctx, "outbox drain failed", err)
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logg.Info(ctx, "mail dispatcher context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := d.DrainOnce(ctx); err != nil {
				d.logg.Error(ctx, "outbox drain failed", err)
			}
		}
	}
}

// DrainOnce processes a single batch of due rows.
func (d *Dispatcher) DrainOnce(ctx context.Context) error {
	rows, err := d.repo.FindDue(ctx, time.Now().UTC(), d.batchSize)
	if err != nil {
		return fmt.Errorf("find due outbox rows: %w", err)
	}
	for i := range rows {
		d.deliver(ctx, &rows[i])
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, row *models.EmailOutbox) {
	rowCtx := d.logg.WithFields(ctx, map[string]any{
		"outbox_id": row.ID.String(),
		"to":        row.ToAddress,
		"attempt":   row.Attempts + 1,
	})

	sendCtx := ctx
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}

	start := time.Now()
	err := d.sender.Send(sendCtx, Message{
		PurchaseID: row.PurchaseID,
		To:         row.ToAddress,
		Subject:    row.Subject,
		Body:       row.Body,
		HTML:       row.HTML,
	})
	d.metrics.ObserveSend(time.Since(start))

	if err == nil {
		if markErr := d.repo.MarkSent(ctx, row.ID, time.Now().UTC()); markErr != nil {
			d.logg.Error(rowCtx, "mark outbox row sent", markErr)
			return
		}
		d.metrics.IncSent()
		d.logg.Info(rowCtx, "confirmation email delivered")
		return
	}

	attempts := row.Attempts + 1
	if attempts >= d.maxAttempts {
		if markErr := d.repo.MarkFailed(ctx, row.ID, attempts, err.Error()); markErr != nil {
			d.logg.Error(rowCtx, "mark outbox row failed", markErr)
			return
		}
		d.metrics.IncFailed()
		d.logg.Error(rowCtx, "email delivery gave up after max attempts", err)
		return
	}

	next := time.Now().UTC().Add(backoffFor(attempts))
	if markErr := d.repo.MarkRetry(ctx, row.ID, attempts, err.Error(), next); markErr != nil {
		d.logg.Error(rowCtx, "mark outbox row for retry", markErr)
		return
	}
	d.metrics.IncRetried()
	d.logg.Warn(rowCtx, "email delivery failed; rescheduled")
}

// backoffFor doubles per attempt, capped at maxBackoff.
func backoffFor(attempts int) time.Duration {
	backoff := baseBackoff
	for i := 1; i < attempts; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
