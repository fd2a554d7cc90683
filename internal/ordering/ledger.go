package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

const (
	defaultStudentOrderLimit = 20
	maxStudentOrderLimit     = 100
	defaultSearchLimit       = 50
	maxSearchLimit           = 200
)

// normalizeLines validates quantities and folds repeated item ids into one
// line, keeping first-seen order.
func normalizeLines(pid string, lines []LineItem) ([]LineItem, error) {
	if len(lines) == 0 {
		return nil, EmptyCartError{PID: pid}
	}
	index := make(map[string]int, len(lines))
	out := make([]LineItem, 0, len(lines))
	for _, line := range lines {
		if line.ItemID == "" {
			return nil, ValidationError{Field: "itemId", Reason: "required"}
		}
		if line.Quantity < 1 {
			return nil, ValidationError{Field: "quantity", Reason: "must be at least 1"}
		}
		if i, ok := index[line.ItemID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.ItemID] = len(out)
		out = append(out, line)
	}
	return out, nil
}

// snapshotItems prices every line from the menu as it is right now.
func (s *Service) snapshotItems(ctx context.Context, lines []LineItem) ([]models.OrderItem, models.Money, error) {
	items := make([]models.OrderItem, 0, len(lines))
	total := models.MoneyFromInt(0)
	for _, line := range lines {
		menuItem, err := s.store.Menu.Get(ctx, line.ItemID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, models.Money{}, ItemUnavailableError{ItemID: line.ItemID}
		}
		if err != nil {
			return nil, models.Money{}, fmt.Errorf("load menu item: %w", err)
		}
		if !menuItem.Available {
			return nil, models.Money{}, ItemUnavailableError{ItemID: line.ItemID}
		}
		items = append(items, models.OrderItem{
			ItemID:   menuItem.ID,
			Name:     menuItem.Name,
			Price:    menuItem.Price,
			Quantity: line.Quantity,
		})
		total = total.Plus(menuItem.Price.Times(line.Quantity))
	}
	return items, total, nil
}

// PlaceOrder creates an order in state placed with a fresh payment code.
func (s *Service) PlaceOrder(ctx context.Context, rawPID string, lines []LineItem) (models.Order, error) {
	pid, err := CanonicalPID(rawPID)
	if err != nil {
		return models.Order{}, err
	}
	lines, err = normalizeLines(pid, lines)
	if err != nil {
		return models.Order{}, err
	}

	blocked, err := s.blocking.IsBlocked(ctx, pid)
	if err != nil {
		return models.Order{}, err
	}
	if blocked {
		return models.Order{}, BlockedError{PID: pid}
	}

	items, total, err := s.snapshotItems(ctx, lines)
	if err != nil {
		return models.Order{}, err
	}

	code, err := s.codes.Generate(ctx)
	if err != nil {
		return models.Order{}, err
	}

	now := s.now()
	order := models.Order{
		ID:          newID(),
		PID:         pid,
		Items:       items,
		Total:       total,
		Status:      models.StatusPlaced,
		PaymentCode: code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Orders.Insert(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("pid", pid).Str("paymentCode", code).Msg("order insert failed; code left unattached")
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}

	if err := s.store.StudentOrders.Put(ctx, order); err != nil {
		s.divergence(err, order, "mirror insert")
	}
	if err := s.codes.Attach(ctx, code, order.ID); err != nil {
		s.logger.Error().Err(err).Str("orderId", order.ID).Str("paymentCode", code).Msg("payment code attach failed")
	}
	if err := s.store.Students.Ensure(ctx, pid, now); err != nil {
		s.logger.Error().Err(err).Str("pid", pid).Msg("ensure student failed")
	}
	if err := s.store.Carts.Put(ctx, pid, map[string]int{}, now); err != nil {
		s.logger.Error().Err(err).Str("pid", pid).Msg("cart clear after order failed")
	}

	s.logger.Info().
		Str("orderId", order.ID).
		Str("pid", pid).
		Str("total", order.Total.String()).
		Msg("order placed")
	s.publish(ctx, models.EventOrderPlaced, order)
	return order, nil
}

func (s *Service) divergence(err error, order models.Order, step string) {
	s.logger.Error().
		Err(err).
		Str("orderId", order.ID).
		Str("pid", order.PID).
		Str("step", step).
		Msg("student order copy diverged from ledger")
}

// syncMirror applies patch to the student copy. A missing copy is rebuilt from
// the updated global order.
func (s *Service) syncMirror(ctx context.Context, order models.Order, patch store.OrderPatch) {
	err := s.store.StudentOrders.Update(ctx, order.PID, order.ID, patch)
	if errors.Is(err, store.ErrNotFound) {
		err = s.store.StudentOrders.Put(ctx, order)
	}
	if err != nil {
		s.divergence(err, order, "mirror update")
	}
}

func (s *Service) GetOrder(ctx context.Context, id string) (models.Order, error) {
	order, err := s.store.Orders.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Order{}, NotFoundError{Resource: "order", ID: id}
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

type CancelResult struct {
	Order   models.Order `json:"order"`
	Blocked bool         `json:"blocked"`
}

// CancelOrder cancels an order on behalf of the student that owns it and then
// applies the blocking policy.
func (s *Service) CancelOrder(ctx context.Context, rawPID, orderID string) (CancelResult, error) {
	pid, err := CanonicalPID(rawPID)
	if err != nil {
		return CancelResult{}, err
	}
	order, err := s.cancel(ctx, pid, orderID)
	if err != nil {
		return CancelResult{}, err
	}
	// The cancel is committed at this point. A failed evaluation is retried by
	// the next cancellation of this student, which counts the whole window.
	blocked, err := s.blocking.EvaluateAndBlock(ctx, pid)
	if err != nil {
		s.logger.Error().Err(err).Str("pid", pid).Str("orderId", order.ID).Msg("blocking evaluation failed after cancel")
		return CancelResult{Order: order}, nil
	}
	return CancelResult{Order: order, Blocked: blocked}, nil
}

// StaffCancelOrder cancels any order. Staff cancellations are not held
// against the student by the blocking policy at cancel time.
func (s *Service) StaffCancelOrder(ctx context.Context, orderID string) (models.Order, error) {
	return s.cancel(ctx, "", orderID)
}

func (s *Service) cancel(ctx context.Context, pid, orderID string) (models.Order, error) {
	unverified := false
	now := s.now()
	cancelled := models.StatusCancelled
	patch := store.OrderPatch{Status: &cancelled, CancelledAt: &now, UpdatedAt: now}
	guard := store.OrderGuard{
		PID:             pid,
		Statuses:        []models.OrderStatus{models.StatusPlaced},
		PaymentVerified: &unverified,
	}

	order, err := s.store.Orders.Update(ctx, orderID, guard, patch)
	if errors.Is(err, store.ErrNotFound) {
		current, getErr := s.GetOrder(ctx, orderID)
		if getErr != nil {
			return models.Order{}, getErr
		}
		if pid != "" && current.PID != pid {
			return models.Order{}, NotFoundError{Resource: "order", ID: orderID}
		}
		return models.Order{}, NotCancellableError{
			OrderID:         orderID,
			Status:          current.Status,
			PaymentVerified: current.PaymentVerified,
		}
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("cancel order: %w", err)
	}

	s.syncMirror(ctx, order, patch)
	s.logger.Info().Str("orderId", order.ID).Str("pid", order.PID).Bool("byStaff", pid == "").Msg("order cancelled")
	s.publish(ctx, models.EventOrderCancelled, order)
	return order, nil
}

// AdvanceStatus moves an order to ready or fulfilled. Verification and
// cancellation have their own operations.
func (s *Service) AdvanceStatus(ctx context.Context, orderID string, target models.OrderStatus) (models.Order, error) {
	if _, err := ParseStatus(string(target)); err != nil {
		return models.Order{}, err
	}

	var guard store.OrderGuard
	var event string
	switch target {
	case models.StatusReady:
		verified := true
		guard = store.OrderGuard{
			Statuses:        []models.OrderStatus{models.StatusPlaced, models.StatusVerified},
			PaymentVerified: &verified,
		}
		event = models.EventOrderReady
	case models.StatusFulfilled:
		guard = store.OrderGuard{Statuses: []models.OrderStatus{models.StatusReady}}
		event = models.EventOrderFulfilled
	default:
		current, err := s.GetOrder(ctx, orderID)
		if err != nil {
			return models.Order{}, err
		}
		return models.Order{}, InvalidTransitionError{OrderID: orderID, From: current.Status, To: target}
	}

	now := s.now()
	patch := store.OrderPatch{Status: &target, UpdatedAt: now}
	order, err := s.store.Orders.Update(ctx, orderID, guard, patch)
	if errors.Is(err, store.ErrNotFound) {
		current, getErr := s.GetOrder(ctx, orderID)
		if getErr != nil {
			return models.Order{}, getErr
		}
		return models.Order{}, InvalidTransitionError{OrderID: orderID, From: current.Status, To: target}
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("advance order: %w", err)
	}

	s.syncMirror(ctx, order, patch)
	s.logger.Info().Str("orderId", order.ID).Str("status", string(order.Status)).Msg("order advanced")
	s.publish(ctx, event, order)
	return order, nil
}

// DeleteOrder removes both copies regardless of status.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.store.Orders.Delete(ctx, orderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError{Resource: "order", ID: orderID}
		}
		return fmt.Errorf("delete order: %w", err)
	}
	if err := s.store.StudentOrders.Delete(ctx, order.PID, orderID); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.divergence(err, order, "mirror delete")
	}
	s.logger.Info().Str("orderId", orderID).Str("pid", order.PID).Msg("order deleted")
	s.publish(ctx, models.EventOrderDeleted, order)
	return nil
}

func clampLimit(limit, def, max int) int64 {
	if limit <= 0 {
		return int64(def)
	}
	if limit > max {
		return int64(max)
	}
	return int64(limit)
}

// ListOrdersForStudent reads the student's own copies, newest first.
func (s *Service) ListOrdersForStudent(ctx context.Context, rawPID string, limit int) ([]models.Order, error) {
	pid, err := CanonicalPID(rawPID)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.StudentOrders.Find(ctx, store.OrderFilter{
		PID:   pid,
		Limit: clampLimit(limit, defaultStudentOrderLimit, maxStudentOrderLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("list student orders: %w", err)
	}
	return orders, nil
}

type SearchQuery struct {
	PID    string
	Status string
	Limit  int
}

// SearchOrders queries the global ledger, newest first. Empty PID and Status
// match everything.
func (s *Service) SearchOrders(ctx context.Context, q SearchQuery) ([]models.Order, error) {
	filter := store.OrderFilter{Limit: clampLimit(q.Limit, defaultSearchLimit, maxSearchLimit)}
	if q.PID != "" {
		pid, err := CanonicalPID(q.PID)
		if err != nil {
			return nil, err
		}
		filter.PID = pid
	}
	if q.Status != "" {
		status, err := ParseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}
	orders, err := s.store.Orders.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}
	return orders, nil
}
