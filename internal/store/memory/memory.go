// Package memory implements the store contracts on guarded maps. It backs the
// ordering tests and STORE_DRIVER=memory local runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

type DB struct {
	mu            sync.Mutex
	menu          map[string]models.MenuItem
	students      map[string]models.Student
	carts         map[string]map[string]int
	orders        map[string]models.Order
	studentOrders map[string]map[string]models.Order
	codes         map[string]models.PaymentCodeReservation
	staff         map[string]models.StaffAccount
	tokens        map[string]models.RefreshToken
}

func NewDB() *DB {
	return &DB{
		menu:          map[string]models.MenuItem{},
		students:      map[string]models.Student{},
		carts:         map[string]map[string]int{},
		orders:        map[string]models.Order{},
		studentOrders: map[string]map[string]models.Order{},
		codes:         map[string]models.PaymentCodeReservation{},
		staff:         map[string]models.StaffAccount{},
		tokens:        map[string]models.RefreshToken{},
	}
}

// New returns a Store whose repositories share one in-memory database.
func New() (*store.Store, *DB) {
	db := NewDB()
	return &store.Store{
		Menu:          menuRepo{db},
		Students:      studentRepo{db},
		Carts:         cartRepo{db},
		Orders:        orderRepo{db},
		StudentOrders: studentOrderRepo{db},
		PaymentCodes:  codeRepo{db},
		Staff:         staffRepo{db},
		RefreshTokens: tokenRepo{db},
		Pinger:        db,
	}, db
}

func (db *DB) Ping(context.Context) error { return nil }

// Reservation exposes a reserved code for assertions.
func (db *DB) Reservation(code string) (models.PaymentCodeReservation, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	r, ok := db.codes[code]
	return r, ok
}

// ReservationCount reports how many payment codes are reserved.
func (db *DB) ReservationCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.codes)
}

// MirrorOrder returns the student's copy of an order.
func (db *DB) MirrorOrder(pid, id string) (models.Order, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	o, ok := db.studentOrders[pid][id]
	return cloneOrder(o), ok
}

// DropMirrorOrder removes a mirror entry without touching the ledger, to
// simulate a failed second write.
func (db *DB) DropMirrorOrder(pid, id string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.studentOrders[pid], id)
}

func cloneOrder(o models.Order) models.Order {
	if o.Items != nil {
		items := make([]models.OrderItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	if o.CancelledAt != nil {
		at := *o.CancelledAt
		o.CancelledAt = &at
	}
	return o
}

func cloneItems(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func matchFilter(o models.Order, f store.OrderFilter) bool {
	if f.PID != "" && o.PID != f.PID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if !f.Since.IsZero() && o.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

func matchGuard(o models.Order, g store.OrderGuard) bool {
	if g.PID != "" && o.PID != g.PID {
		return false
	}
	if len(g.Statuses) > 0 {
		ok := false
		for _, s := range g.Statuses {
			if o.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if g.PaymentVerified != nil && o.PaymentVerified != *g.PaymentVerified {
		return false
	}
	return true
}

func applyPatch(o *models.Order, p store.OrderPatch) {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.PaymentVerified != nil {
		o.PaymentVerified = *p.PaymentVerified
	}
	if p.CancelledAt != nil {
		at := *p.CancelledAt
		o.CancelledAt = &at
	}
	if !p.UpdatedAt.IsZero() {
		o.UpdatedAt = p.UpdatedAt
	}
}

// selectOrders filters, sorts newest first and applies the limit.
func selectOrders(src map[string]models.Order, f store.OrderFilter) []models.Order {
	out := make([]models.Order, 0)
	for _, o := range src {
		if matchFilter(o, f) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
