package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/domain/dispatch"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

// shipmentStore loads and writes back every record carrying order-owned
// finished quantity: terminal-stage batches and stock substitutions.
type shipmentStore struct {
	batchRepo stock.BatchRepository
	usageRepo stock.UsageRepository
}

func (s shipmentStore) load(ctx context.Context, order *dispatch.Order) ([]dispatch.Shipment, error) {
	lineIDs := order.LineIDs()

	batches, err := s.batchRepo.FindByOrderLines(ctx, lineIDs)
	if err != nil {
		return nil, err
	}
	usages, err := s.usageRepo.FindByOrderLines(ctx, lineIDs)
	if err != nil {
		return nil, err
	}

	shipments := make([]dispatch.Shipment, 0, len(batches)+len(usages))
	for _, b := range batches {
		shipments = append(shipments, b)
	}
	for _, u := range usages {
		shipments = append(shipments, u)
	}
	return shipments, nil
}

func (s shipmentStore) save(ctx context.Context, changed []dispatch.Shipment) error {
	for _, shipment := range changed {
		switch record := shipment.(type) {
		case *stock.Batch:
			if err := s.batchRepo.Update(ctx, record); err != nil {
				return err
			}
		case *stock.Usage:
			if err := s.usageRepo.Update(ctx, record); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported shipment type %T", shipment)
		}
	}
	return nil
}
