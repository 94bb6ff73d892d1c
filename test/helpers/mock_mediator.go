package helpers

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/andrescamacho/garmentflow/internal/application/mediator"
)

// MockMediator is a test double for the Mediator interface.
// Handlers that delegate through the mediator (RecordFabricUsage → ReserveUsage)
// can be driven against scripted responses.
type MockMediator struct {
	mu       sync.Mutex
	sendFunc func(ctx context.Context, request mediator.Request) (mediator.Response, error)
	callLog  []string // Track which commands were called
}

// NewMockMediator creates a new MockMediator
func NewMockMediator() *MockMediator {
	return &MockMediator{
		callLog: []string{},
	}
}

// Send implements the Mediator interface
func (m *MockMediator) Send(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	m.mu.Lock()
	m.callLog = append(m.callLog, mediator.RequestName(request))
	fn := m.sendFunc
	m.mu.Unlock()

	if fn == nil {
		return nil, fmt.Errorf("unsupported request type: %T", request)
	}
	return fn(ctx, request)
}

// SetSendFunc sets a custom function for Send calls
func (m *MockMediator) SetSendFunc(fn func(ctx context.Context, request mediator.Request) (mediator.Response, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendFunc = fn
}

// GetCallLog returns the names of the requests that were sent
func (m *MockMediator) GetCallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.callLog...)
}

// Register implements the Mediator interface (no-op for tests)
func (m *MockMediator) Register(requestType reflect.Type, handler mediator.RequestHandler) error {
	return nil
}

// RegisterMiddleware implements the Mediator interface (no-op for tests)
func (m *MockMediator) RegisterMiddleware(middleware mediator.Middleware) {}

var _ mediator.Mediator = (*MockMediator)(nil)
