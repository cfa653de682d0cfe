package payments

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Authorization is what the external payment provider hands back when funds
// are reserved or collected.
type Authorization struct {
	Provider  string
	Reference string
}

// Provider reserves and collects funds with an external processor. The
// production processor integration is out of scope; the simulated provider
// below stands in for it end to end.
type Provider interface {
	Authorize(ctx context.Context, intentID uuid.UUID, amount decimal.Decimal) (Authorization, error)
}

// simulatedProvider always approves and mints one stable reference per
// intent, so replays inside retried transactions do not change the stored
// external reference.
type simulatedProvider struct {
	name string

	mu         sync.Mutex
	references map[uuid.UUID]string
}

// NewSimulatedProvider returns a deterministic in-process provider.
func NewSimulatedProvider(name string) Provider {
	return &simulatedProvider{
		name:       name,
		references: make(map[uuid.UUID]string),
	}
}

func (p *simulatedProvider) Authorize(_ context.Context, intentID uuid.UUID, _ decimal.Decimal) (Authorization, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ref, ok := p.references[intentID]
	if !ok {
		ref = fmt.Sprintf("%s_%s", p.name, uuid.NewString())
		p.references[intentID] = ref
	}
	return Authorization{Provider: p.name, Reference: ref}, nil
}
