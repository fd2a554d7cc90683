package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

type Verification struct {
	PID             string       `json:"pid"`
	Order           models.Order `json:"order"`
	AlreadyVerified bool         `json:"alreadyVerified"`
}

// VerifyPaymentCode confirms the payment of the order holding code. Repeating
// it for a verified order succeeds without writing anything.
func (s *Service) VerifyPaymentCode(ctx context.Context, rawCode string) (Verification, error) {
	code := NormalizeCode(rawCode)
	if code == "" {
		return Verification{}, InvalidCodeError{Code: code}
	}

	order, err := s.store.Orders.GetByPaymentCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return Verification{}, InvalidCodeError{Code: code}
	}
	if err != nil {
		return Verification{}, fmt.Errorf("find order by code: %w", err)
	}

	for {
		if order.PaymentVerified {
			return Verification{PID: order.PID, Order: order, AlreadyVerified: true}, nil
		}
		if order.Status != models.StatusPlaced {
			return Verification{}, InvalidTransitionError{OrderID: order.ID, From: order.Status, To: models.StatusVerified}
		}

		unverified := false
		verified := true
		status := models.StatusVerified
		patch := store.OrderPatch{Status: &status, PaymentVerified: &verified, UpdatedAt: s.now()}
		updated, err := s.store.Orders.Update(ctx, order.ID, store.OrderGuard{
			Statuses:        []models.OrderStatus{models.StatusPlaced},
			PaymentVerified: &unverified,
		}, patch)
		if errors.Is(err, store.ErrNotFound) {
			// Lost a race with another staff action; decide again on the
			// current state.
			order, err = s.GetOrder(ctx, order.ID)
			if err != nil {
				return Verification{}, err
			}
			continue
		}
		if err != nil {
			return Verification{}, fmt.Errorf("verify order: %w", err)
		}

		s.syncMirror(ctx, updated, patch)
		s.logger.Info().Str("orderId", updated.ID).Str("pid", updated.PID).Msg("payment verified")
		s.publish(ctx, models.EventOrderVerified, updated)
		return Verification{PID: updated.PID, Order: updated}, nil
	}
}
