// Package store defines the persistence contracts used by the ordering core.
// internal/database implements them on MongoDB and internal/store/memory
// implements them in process.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vrjatclg/Time2Eat/internal/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// OrderFilter selects orders newest first. Zero fields are ignored.
type OrderFilter struct {
	PID    string
	Status models.OrderStatus
	Since  time.Time
	Limit  int64
}

// OrderGuard is the precondition of a conditional order update.
type OrderGuard struct {
	PID             string
	Statuses        []models.OrderStatus
	PaymentVerified *bool
}

// OrderPatch lists the mutable order fields. Nil fields are left untouched.
type OrderPatch struct {
	Status          *models.OrderStatus
	PaymentVerified *bool
	CancelledAt     *time.Time
	UpdatedAt       time.Time
}

type MenuPatch struct {
	Name      *string
	Price     *models.Money
	ImageURL  *string
	Available *bool
	UpdatedAt time.Time
}

type Menu interface {
	List(ctx context.Context, onlyAvailable bool) ([]models.MenuItem, error)
	Get(ctx context.Context, id string) (models.MenuItem, error)
	Insert(ctx context.Context, item models.MenuItem) error
	Update(ctx context.Context, id string, patch MenuPatch) (models.MenuItem, error)
	Delete(ctx context.Context, id string) error
}

type Students interface {
	Get(ctx context.Context, pid string) (models.Student, error)
	// Ensure creates the student if missing and never touches an existing
	// blocked flag.
	Ensure(ctx context.Context, pid string, now time.Time) error
	SetBlocked(ctx context.Context, pid string, blocked bool, now time.Time) error
}

type Carts interface {
	// Get returns an empty map when the student has no snapshot.
	Get(ctx context.Context, pid string) (map[string]int, error)
	Put(ctx context.Context, pid string, items map[string]int, now time.Time) error
}

// Orders is the global ledger.
type Orders interface {
	Insert(ctx context.Context, order models.Order) error
	Get(ctx context.Context, id string) (models.Order, error)
	GetByPaymentCode(ctx context.Context, code string) (models.Order, error)
	// Update applies patch only when the order matches guard and returns the
	// updated order. ErrNotFound means no order matched id and guard.
	Update(ctx context.Context, id string, guard OrderGuard, patch OrderPatch) (models.Order, error)
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
}

// StudentOrders is the per-student mirror of the ledger.
type StudentOrders interface {
	Put(ctx context.Context, order models.Order) error
	Update(ctx context.Context, pid, id string, patch OrderPatch) error
	Delete(ctx context.Context, pid, id string) error
	Find(ctx context.Context, filter OrderFilter) ([]models.Order, error)
}

type PaymentCodes interface {
	// Reserve fails with ErrDuplicate when the code is already reserved.
	Reserve(ctx context.Context, code string, now time.Time) error
	Attach(ctx context.Context, code, orderID string) error
}

type Staff interface {
	GetByEmail(ctx context.Context, email string) (models.StaffAccount, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.StaffAccount, error)
	// Ensure inserts the account when no account with that email exists.
	Ensure(ctx context.Context, account models.StaffAccount) error
}

type RefreshTokens interface {
	Insert(ctx context.Context, token models.RefreshToken) (primitive.ObjectID, error)
	FindActive(ctx context.Context, tokenHash string) (models.RefreshToken, error)
	Revoke(ctx context.Context, id primitive.ObjectID, replacedBy *primitive.ObjectID) error
	RevokeByHash(ctx context.Context, tokenHash string) (bool, error)
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Store struct {
	Menu          Menu
	Students      Students
	Carts         Carts
	Orders        Orders
	StudentOrders StudentOrders
	PaymentCodes  PaymentCodes
	Staff         Staff
	RefreshTokens RefreshTokens
	Pinger        Pinger
}
