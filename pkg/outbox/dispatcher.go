package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	"github.com/MagnumMax/skyluxse-sub003/pkg/db/models"
	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
	pkgerrors "github.com/MagnumMax/skyluxse-sub003/pkg/errors"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
	"github.com/MagnumMax/skyluxse-sub003/pkg/metrics"
)

const (
	defaultBatchSize       = 50
	defaultMaxAttempts     = 5
	defaultDeliveryTimeout = 15 * time.Second

	// claimLease bounds how long a processing claim stays honored. A claim
	// older than this belongs to a dispatcher that died mid-batch.
	claimLease = 5 * time.Minute
)

// Deliverer hands one claimed entry to its external capability. A nil return
// means delivered; coded errors steer the retry decision.
type Deliverer interface {
	Deliver(ctx context.Context, entry models.OutboxEntry) error
}

// Stats summarizes one dispatch batch.
type Stats struct {
	Claimed   int
	Succeeded int
	Retried   int
	Exhausted int
}

type DispatcherParams struct {
	Config     config.OutboxConfig
	Repository *Repository
	Deliverers map[enums.TargetSystem]Deliverer
	Logger     *logger.Logger
	Metrics    *metrics.DispatchMetrics
}

// Dispatcher drains due outbox entries. One failing entry never blocks the
// rest of the batch, and one failing target never blocks the other targets.
type Dispatcher struct {
	repo            *Repository
	deliverers      map[enums.TargetSystem]Deliverer
	logg            *logger.Logger
	mtr             *metrics.DispatchMetrics
	batchSize       int
	maxAttempts     int
	retryBase       time.Duration
	deliveryTimeout time.Duration
	now             func() time.Time
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("dispatcher requires a repository")
	}
	if len(params.Deliverers) == 0 {
		return nil, fmt.Errorf("dispatcher requires at least one deliverer")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("dispatcher requires a logger")
	}

	batch := params.Config.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	maxAttempts := params.Config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Dispatcher{
		repo:            params.Repository,
		deliverers:      params.Deliverers,
		logg:            params.Logger,
		mtr:             params.Metrics,
		batchSize:       batch,
		maxAttempts:     maxAttempts,
		retryBase:       params.Config.RetryBase(),
		deliveryTimeout: defaultDeliveryTimeout,
		now:             time.Now,
	}, nil
}

// RunBatch claims and processes one batch of due entries. It returns batch
// stats; the error covers claim failures, not individual deliveries.
func (d *Dispatcher) RunBatch(ctx context.Context) (Stats, error) {
	started := d.now()
	var stats Stats

	requeued, err := d.repo.RequeueStale(ctx, started.Add(-claimLease))
	if err != nil {
		return stats, fmt.Errorf("requeueing stale claims: %w", err)
	}
	if requeued > 0 {
		d.logg.Warn(d.logg.WithField(ctx, "requeued", requeued), "reclaimed entries from an expired dispatcher lease")
	}

	entries, err := d.repo.ClaimDue(ctx, d.batchSize, started)
	if err != nil {
		return stats, fmt.Errorf("claiming due entries: %w", err)
	}
	stats.Claimed = len(entries)

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}
		d.process(ctx, entry, &stats)
	}

	d.mtr.ObserveBatch("outbox-dispatcher", d.now().Sub(started))
	return stats, nil
}

func (d *Dispatcher) process(ctx context.Context, entry models.OutboxEntry, stats *Stats) {
	ctx = d.logg.WithTarget(ctx, string(entry.TargetSystem))
	ctx = d.logg.WithFields(ctx, map[string]any{
		"outbox_id":  entry.ID.String(),
		"event_type": entry.EventType,
		"entity_id":  entry.EntityID,
	})

	attempt := entry.Attempts + 1
	deliverErr := d.deliver(ctx, entry)

	if deliverErr == nil {
		if err := d.repo.MarkSucceeded(ctx, entry.ID, attempt); err != nil {
			d.logg.Error(ctx, "marking entry succeeded", err)
			return
		}
		stats.Succeeded++
		d.mtr.IncDelivered(string(entry.TargetSystem))
		d.logg.Info(ctx, "outbox entry delivered")
		return
	}

	ctx = d.logg.WithField(ctx, "attempt", attempt)

	// Permanent rejections still walk the retry ladder; only the attempt
	// ceiling parks an entry. Transport-level retries already filtered out
	// what was worth repeating within this attempt.
	if attempt >= d.maxAttempts {
		if err := d.repo.MarkExhausted(ctx, entry.ID, attempt, deliverErr); err != nil {
			d.logg.Error(ctx, "marking entry exhausted", err)
			return
		}
		stats.Exhausted++
		d.mtr.IncExhausted(string(entry.TargetSystem))
		d.logg.Error(ctx, "outbox entry will not be retried", deliverErr)
		return
	}

	nextRunAt := d.now().Add(d.retryBase * time.Duration(attempt))
	if err := d.repo.MarkRetry(ctx, entry.ID, attempt, nextRunAt, deliverErr); err != nil {
		d.logg.Error(ctx, "scheduling entry retry", err)
		return
	}
	stats.Retried++
	d.mtr.IncFailed(string(entry.TargetSystem))
	d.logg.Warn(d.logg.WithField(ctx, "error", deliverErr.Error()), "outbox delivery failed, retry scheduled")
}

func (d *Dispatcher) deliver(ctx context.Context, entry models.OutboxEntry) error {
	deliverer, ok := d.deliverers[entry.TargetSystem]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no deliverer for target %q", entry.TargetSystem))
	}
	deliverCtx, cancel := context.WithTimeout(ctx, d.deliveryTimeout)
	defer cancel()
	return deliverer.Deliver(deliverCtx, entry)
}
