package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// ExternalJobMeta tracks a stage performed off-site by a subcontractor.
//
// Invariants:
//   - sent is fixed at creation
//   - received never decreases and received[size] <= sent[size]
type ExternalJobMeta struct {
	subcontractor string
	ratePerPiece  decimal.Decimal
	sent          shared.QuantityMap
	received      shared.QuantityMap
	sentAt        time.Time
}

func NewExternalJobMeta(subcontractor string, rate decimal.Decimal, sent shared.QuantityMap, sentAt time.Time) *ExternalJobMeta {
	return &ExternalJobMeta{
		subcontractor: subcontractor,
		ratePerPiece:  rate,
		sent:          sent.Clone(),
		received:      sent.ZeroLike(),
		sentAt:        sentAt,
	}
}

func ReconstructExternalJobMeta(subcontractor string, rate decimal.Decimal, sent, received shared.QuantityMap, sentAt time.Time) *ExternalJobMeta {
	return &ExternalJobMeta{
		subcontractor: subcontractor,
		ratePerPiece:  rate,
		sent:          sent,
		received:      received,
		sentAt:        sentAt,
	}
}

func (m *ExternalJobMeta) Subcontractor() string         { return m.subcontractor }
func (m *ExternalJobMeta) RatePerPiece() decimal.Decimal { return m.ratePerPiece }
func (m *ExternalJobMeta) Sent() shared.QuantityMap      { return m.sent.Clone() }
func (m *ExternalJobMeta) Received() shared.QuantityMap  { return m.received.Clone() }
func (m *ExternalJobMeta) SentAt() time.Time             { return m.sentAt }

// Outstanding is sent minus received, per size
func (m *ExternalJobMeta) Outstanding() shared.QuantityMap {
	outstanding := m.sent.Clone()
	for size, qty := range m.received {
		outstanding[size] -= qty
	}
	return outstanding
}

// IsFullyReceived reports received == sent for every size
func (m *ExternalJobMeta) IsFullyReceived() bool {
	return m.received.Equal(m.sent)
}

// Receive adds a delivery. Any size that would exceed what was sent rejects
// the whole delivery with OverReceipt and leaves received unchanged.
func (m *ExternalJobMeta) Receive(delta shared.QuantityMap) error {
	if err := delta.Validate(); err != nil {
		return err
	}
	if err := delta.CheckLabels(m.sent); err != nil {
		return err
	}
	if delta.Total() == 0 {
		return shared.NewInvalidQuantityMapError("receipt must contain at least one piece")
	}
	if size, requested, available, exceeded := delta.Exceeding(m.Outstanding()); exceeded {
		return shared.NewOverReceiptError(size, m.received[size]+requested, m.received[size]+available)
	}

	m.received = m.received.Add(delta)
	return nil
}
