package helpers

import (
	"context"
	"sync"

	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
)

// MockPayablePublisher captures published payable events
type MockPayablePublisher struct {
	mu        sync.Mutex
	published []*pipeline.PayableEvent
	err       error
}

func NewMockPayablePublisher() *MockPayablePublisher {
	return &MockPayablePublisher{}
}

// SetError makes every publish fail until cleared with nil
func (p *MockPayablePublisher) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// PublishPayable implements common.PayablePublisher
func (p *MockPayablePublisher) PublishPayable(ctx context.Context, event *pipeline.PayableEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}

// Published returns a copy of every event published so far
func (p *MockPayablePublisher) Published() []*pipeline.PayableEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*pipeline.PayableEvent{}, p.published...)
}
