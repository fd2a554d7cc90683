package ordering

import (
	"context"
	"fmt"

	"github.com/vrjatclg/Time2Eat/internal/store"
)

type ReconcileReport struct {
	PID       string `json:"pid"`
	Rewritten int    `json:"rewritten"`
	Removed   int    `json:"removed"`
}

// ReconcileStudent rebuilds the student's order copies from the global
// ledger. Copies without a ledger entry are removed.
func (s *Service) ReconcileStudent(ctx context.Context, rawPID string) (ReconcileReport, error) {
	pid, err := CanonicalPID(rawPID)
	if err != nil {
		return ReconcileReport{}, err
	}
	report := ReconcileReport{PID: pid}

	global, err := s.store.Orders.Find(ctx, store.OrderFilter{PID: pid})
	if err != nil {
		return report, fmt.Errorf("load ledger: %w", err)
	}
	mirror, err := s.store.StudentOrders.Find(ctx, store.OrderFilter{PID: pid})
	if err != nil {
		return report, fmt.Errorf("load student orders: %w", err)
	}

	known := make(map[string]struct{}, len(global))
	for _, order := range global {
		known[order.ID] = struct{}{}
		if err := s.store.StudentOrders.Put(ctx, order); err != nil {
			return report, fmt.Errorf("rewrite student order %s: %w", order.ID, err)
		}
		report.Rewritten++
	}
	for _, order := range mirror {
		if _, ok := known[order.ID]; ok {
			continue
		}
		if err := s.store.StudentOrders.Delete(ctx, pid, order.ID); err != nil {
			return report, fmt.Errorf("remove orphan student order %s: %w", order.ID, err)
		}
		report.Removed++
	}

	s.logger.Info().
		Str("pid", pid).
		Int("rewritten", report.Rewritten).
		Int("removed", report.Removed).
		Msg("student orders reconciled")
	return report, nil
}
