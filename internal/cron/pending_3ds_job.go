package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	pkgerrors "github.com/mercaline/mercaline-backend/pkg/errors"
	"github.com/mercaline/mercaline-backend/pkg/logger"
)

// pendingExpirer is the slice of the payment service the job needs.
type pendingExpirer interface {
	ListStalePending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	ExpirePending(ctx context.Context, intentID uuid.UUID) error
}

// Pending3DSJobParams configure the 3-D Secure expiry job.
type Pending3DSJobParams struct {
	Logger   *logger.Logger
	Payments pendingExpirer
	TTL      time.Duration
}

// NewPending3DSJob builds the job that fails payment intents whose 3-D
// Secure challenge was never answered within the TTL.
func NewPending3DSJob(params Pending3DSJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment service required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("pending ttl must be positive")
	}
	return &pending3DSJob{
		logg:     params.Logger,
		payments: params.Payments,
		ttl:      params.TTL,
		now:      time.Now,
	}, nil
}

type pending3DSJob struct {
	logg     *logger.Logger
	payments pendingExpirer
	ttl      time.Duration
	now      func() time.Time
}

func (j *pending3DSJob) Name() string { return "pending-3ds-expiry" }

// Run expires every stale pending intent, collecting per-intent errors so
// one stuck row does not block the rest of the batch. A confirmation racing
// the expiry surfaces as a state conflict, which just means the buyer won.
func (j *pending3DSJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	ids, err := j.payments.ListStalePending(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending intents: %w", err)
	}

	var errs []error
	expired := 0
	for _, id := range ids {
		if err := j.payments.ExpirePending(ctx, id); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
				continue
			}
			errs = append(errs, fmt.Errorf("expire intent %s: %w", id, err))
			continue
		}
		expired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"candidates": len(ids), "expired": expired})
	j.logg.Info(logCtx, "pending 3ds expiry loop complete")
	return multierr.Combine(errs...)
}
