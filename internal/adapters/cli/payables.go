package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/garmentflow/internal/adapters/directory"
	subcontractCommands "github.com/andrescamacho/garmentflow/internal/application/subcontract/commands"
)

// flushPayables republishes outbox payables until ctx is done
func flushPayables(ctx context.Context, a *app, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resp, err := a.mediator.Send(ctx, &subcontractCommands.PublishPendingPayablesCommand{})
			if err != nil {
				a.logger.Warn().Err(err).Msg("payable flush failed")
				continue
			}
			if r, ok := resp.(*subcontractCommands.PublishPendingPayablesResponse); ok && r.Pending > 0 {
				a.logger.Info().Int("pending", r.Pending).Int("published", r.Published).Msg("payables flushed")
			}
		}
	}
}

// directoryProbe fails while the directory circuit is open
func directoryProbe(a *app) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if state := a.directory.Breaker().State(); state == directory.CircuitOpen {
			return fmt.Errorf("employee directory circuit %s", state)
		}
		return nil
	}
}
