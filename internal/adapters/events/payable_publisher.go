package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/infrastructure/config"
)

// publisherConn is the slice of *nats.Conn the publisher needs
type publisherConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// PayablePublisher publishes subcontractor payables to NATS.
//
// Subject convention: <prefix>.<subcontractor>, e.g. payables.acme_wash
//
// Publishing runs after the receipt is committed. A failed publish leaves the
// payable pending in the outbox for a later flush.
type PayablePublisher struct {
	conn          publisherConn
	subjectPrefix string
	log           zerolog.Logger
}

// PayableMessage is the JSON schema published to NATS
type PayableMessage struct {
	PayableID     string             `json:"payable_id"`
	AssignmentID  string             `json:"assignment_id"`
	Subcontractor string             `json:"subcontractor"`
	Quantities    shared.QuantityMap `json:"quantities"`
	Quantity      int                `json:"quantity"`
	RatePerPiece  decimal.Decimal    `json:"rate_per_piece"`
	Amount        decimal.Decimal    `json:"amount"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

// Connect dials NATS using the events config
func Connect(cfg config.EventsConfig, log zerolog.Logger) (*PayablePublisher, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("garmentflow"),
		nats.Timeout(cfg.ConnectTimeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("events: disconnected from NATS")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("events: reconnected to NATS")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return NewPayablePublisher(nc, cfg.SubjectPrefix, log), nil
}

// NewPayablePublisher wraps an existing connection
func NewPayablePublisher(conn publisherConn, subjectPrefix string, log zerolog.Logger) *PayablePublisher {
	return &PayablePublisher{conn: conn, subjectPrefix: subjectPrefix, log: log}
}

// PublishPayable sends one payable event
func (p *PayablePublisher) PublishPayable(ctx context.Context, event *pipeline.PayableEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(PayableMessage{
		PayableID:     event.ID,
		AssignmentID:  event.AssignmentID,
		Subcontractor: event.Subcontractor,
		Quantities:    event.Quantities,
		Quantity:      event.Quantity,
		RatePerPiece:  event.RatePerPiece,
		Amount:        event.Amount,
		OccurredAt:    event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payable %s: %w", event.ID, err)
	}

	subject := p.Subject(event.Subcontractor)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish payable %s on %s: %w", event.ID, subject, err)
	}

	p.log.Debug().
		Str("subject", subject).
		Str("payable_id", event.ID).
		Str("amount", event.Amount.StringFixed(2)).
		Msg("events: payable published")
	return nil
}

// Subject maps a subcontractor name onto a single NATS subject token
func (p *PayablePublisher) Subject(subcontractor string) string {
	token := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, strings.TrimSpace(subcontractor))
	if token == "" {
		token = "unknown"
	}
	return p.subjectPrefix + "." + token
}

// Close drains pending messages and closes the connection
func (p *PayablePublisher) Close() error {
	return p.conn.Drain()
}
