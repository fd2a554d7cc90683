package memory

import (
	"context"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

type orderRepo struct{ db *DB }

func (r orderRepo) Insert(_ context.Context, order models.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.orders[order.ID]; ok {
		return store.ErrDuplicate
	}
	r.db.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r orderRepo) Get(_ context.Context, id string) (models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r orderRepo) GetByPaymentCode(_ context.Context, code string) (models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.orders {
		if o.PaymentCode == code {
			return cloneOrder(o), nil
		}
	}
	return models.Order{}, store.ErrNotFound
}

func (r orderRepo) Update(_ context.Context, id string, guard store.OrderGuard, patch store.OrderPatch) (models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[id]
	if !ok || !matchGuard(o, guard) {
		return models.Order{}, store.ErrNotFound
	}
	applyPatch(&o, patch)
	r.db.orders[id] = o
	return cloneOrder(o), nil
}

func (r orderRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.orders[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.orders, id)
	return nil
}

func (r orderRepo) Find(_ context.Context, f store.OrderFilter) ([]models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return selectOrders(r.db.orders, f), nil
}

func (r orderRepo) Count(_ context.Context, f store.OrderFilter) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f.Limit = 0
	return int64(len(selectOrders(r.db.orders, f))), nil
}

type studentOrderRepo struct{ db *DB }

func (r studentOrderRepo) Put(_ context.Context, order models.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	byID, ok := r.db.studentOrders[order.PID]
	if !ok {
		byID = map[string]models.Order{}
		r.db.studentOrders[order.PID] = byID
	}
	byID[order.ID] = cloneOrder(order)
	return nil
}

func (r studentOrderRepo) Update(_ context.Context, pid, id string, patch store.OrderPatch) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.studentOrders[pid][id]
	if !ok {
		return store.ErrNotFound
	}
	applyPatch(&o, patch)
	r.db.studentOrders[pid][id] = o
	return nil
}

func (r studentOrderRepo) Delete(_ context.Context, pid, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.studentOrders[pid][id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.studentOrders[pid], id)
	return nil
}

func (r studentOrderRepo) Find(_ context.Context, f store.OrderFilter) ([]models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return selectOrders(r.db.studentOrders[f.PID], f), nil
}
