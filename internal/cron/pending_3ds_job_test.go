package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/mercaline/mercaline-backend/pkg/errors"
	"github.com/mercaline/mercaline-backend/pkg/logger"
)

type fakeExpirer struct {
	listFn   func(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	expireFn func(ctx context.Context, intentID uuid.UUID) error

	expired []uuid.UUID
}

func (f *fakeExpirer) ListStalePending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	if f.listFn != nil {
		return f.listFn(ctx, cutoff)
	}
	return nil, nil
}

func (f *fakeExpirer) ExpirePending(ctx context.Context, intentID uuid.UUID) error {
	if f.expireFn != nil {
		if err := f.expireFn(ctx, intentID); err != nil {
			return err
		}
	}
	f.expired = append(f.expired, intentID)
	return nil
}

func newTestJob(t *testing.T, expirer *fakeExpirer, ttl time.Duration) *pending3DSJob {
	t.Helper()

	job, err := NewPending3DSJob(Pending3DSJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Payments: expirer,
		TTL:      ttl,
	})
	if err != nil {
		t.Fatalf("NewPending3DSJob error: %v", err)
	}
	return job.(*pending3DSJob)
}

func TestPending3DSJob_ExpiresStaleIntents(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	var gotCutoff time.Time
	expirer := &fakeExpirer{
		listFn: func(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
			gotCutoff = cutoff
			return ids, nil
		},
	}

	job := newTestJob(t, expirer, 30*time.Minute)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if !gotCutoff.Equal(fixed.Add(-30 * time.Minute)) {
		t.Fatalf("cutoff = %v, want ttl before now", gotCutoff)
	}
	if len(expirer.expired) != 2 {
		t.Fatalf("expired %d intents, want 2", len(expirer.expired))
	}
}

func TestPending3DSJob_SkipsConfirmedIntents(t *testing.T) {
	resolved := uuid.New()
	stale := uuid.New()
	expirer := &fakeExpirer{
		listFn: func(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
			return []uuid.UUID{resolved, stale}, nil
		},
		expireFn: func(ctx context.Context, intentID uuid.UUID) error {
			if intentID == resolved {
				// a confirmation landed between the query and the expiry
				return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot confirm_3ds a payment intent in status captured")
			}
			return nil
		},
	}

	job := newTestJob(t, expirer, time.Minute)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("a lost race is not a job failure: %v", err)
	}
	if len(expirer.expired) != 1 || expirer.expired[0] != stale {
		t.Fatalf("expired = %v, want just %s", expirer.expired, stale)
	}
}

func TestPending3DSJob_CollectsOtherErrors(t *testing.T) {
	broken := uuid.New()
	healthy := uuid.New()
	expirer := &fakeExpirer{
		listFn: func(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
			return []uuid.UUID{broken, healthy}, nil
		},
		expireFn: func(ctx context.Context, intentID uuid.UUID) error {
			if intentID == broken {
				return errors.New("connection reset")
			}
			return nil
		},
	}

	job := newTestJob(t, expirer, time.Minute)
	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected the per-intent error to surface")
	}
	// one bad row must not stop the rest of the batch
	if len(expirer.expired) != 1 || expirer.expired[0] != healthy {
		t.Fatalf("expired = %v, want just %s", expirer.expired, healthy)
	}
}

func TestPending3DSJob_ParamsValidation(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})

	if _, err := NewPending3DSJob(Pending3DSJobParams{Payments: &fakeExpirer{}, TTL: time.Minute}); err == nil {
		t.Fatal("expected error for missing logger")
	}
	if _, err := NewPending3DSJob(Pending3DSJobParams{Logger: logg, TTL: time.Minute}); err == nil {
		t.Fatal("expected error for missing payment service")
	}
	if _, err := NewPending3DSJob(Pending3DSJobParams{Logger: logg, Payments: &fakeExpirer{}}); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}
}
