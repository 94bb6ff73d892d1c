package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// OrderLine owns one target quantity and spawns one cutting lineage
type OrderLine struct {
	id        string
	orderID   string
	productID string
	target    shared.QuantityMap
}

func ReconstructOrderLine(id, orderID, productID string, target shared.QuantityMap) *OrderLine {
	return &OrderLine{id: id, orderID: orderID, productID: productID, target: target}
}

func (l *OrderLine) ID() string                 { return l.id }
func (l *OrderLine) OrderID() string            { return l.orderID }
func (l *OrderLine) ProductID() string          { return l.productID }
func (l *OrderLine) Target() shared.QuantityMap { return l.target.Clone() }

// JobTarget returns the target for the line's cutting job. An empty request
// takes the line's target; anything else must equal it, since the lineage is
// what the line delivers.
func (l *OrderLine) JobTarget(requested shared.QuantityMap) (shared.QuantityMap, error) {
	if len(requested) == 0 {
		return l.target.Clone(), nil
	}
	if err := requested.Validate(); err != nil {
		return nil, err
	}
	if err := requested.CheckLabels(l.target); err != nil {
		return nil, err
	}
	if !requested.Equal(l.target) {
		return nil, shared.NewInvalidQuantityMapError(
			fmt.Sprintf("target %s does not match order line %s target %s", requested, l.id, l.target))
	}
	return l.target.Clone(), nil
}

// Order is an aggregate of order lines; its status is derived, never stored
type Order struct {
	id        string
	clientRef string
	lines     []*OrderLine
	createdAt time.Time
}

// LineSpec is the intake shape of one order line
type LineSpec struct {
	ProductID  string
	Quantities shared.QuantityMap
}

// NewOrder accepts an order from intake. Only quantity-map shape is validated;
// product existence belongs to the intake service.
func NewOrder(clientRef string, specs []LineSpec, at time.Time) (*Order, error) {
	if strings.TrimSpace(clientRef) == "" {
		return nil, shared.NewValidationError("client", "cannot be empty")
	}
	if len(specs) == 0 {
		return nil, shared.NewValidationError("lines", "order needs at least one line")
	}

	order := &Order{id: shared.NewID(), clientRef: clientRef, createdAt: at}
	for _, spec := range specs {
		if strings.TrimSpace(spec.ProductID) == "" {
			return nil, shared.NewValidationError("product_id", "cannot be empty")
		}
		if err := spec.Quantities.Validate(); err != nil {
			return nil, err
		}
		if spec.Quantities.Total() == 0 {
			return nil, shared.NewInvalidQuantityMapError("order line " + spec.ProductID + " has no pieces")
		}
		order.lines = append(order.lines, &OrderLine{
			id:        shared.NewID(),
			orderID:   order.id,
			productID: spec.ProductID,
			target:    spec.Quantities.Clone(),
		})
	}
	return order, nil
}

func ReconstructOrder(id, clientRef string, lines []*OrderLine, createdAt time.Time) *Order {
	return &Order{id: id, clientRef: clientRef, lines: lines, createdAt: createdAt}
}

func (o *Order) ID() string           { return o.id }
func (o *Order) ClientRef() string    { return o.clientRef }
func (o *Order) CreatedAt() time.Time { return o.createdAt }

func (o *Order) Lines() []*OrderLine {
	lines := make([]*OrderLine, len(o.lines))
	copy(lines, o.lines)
	return lines
}

func (o *Order) LineIDs() []string {
	ids := make([]string, len(o.lines))
	for i, line := range o.lines {
		ids[i] = line.id
	}
	return ids
}

// Line finds an order line by id
func (o *Order) Line(id string) (*OrderLine, bool) {
	for _, line := range o.lines {
		if line.id == id {
			return line, true
		}
	}
	return nil, false
}
