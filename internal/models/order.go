package models

import "time"

type OrderStatus string

const (
	StatusPlaced    OrderStatus = "placed"
	StatusVerified  OrderStatus = "verified"
	StatusReady     OrderStatus = "ready"
	StatusFulfilled OrderStatus = "fulfilled"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderItem is the immutable snapshot of a menu item taken at checkout.
type OrderItem struct {
	ItemID   string `bson:"itemId" json:"itemId"`
	Name     string `bson:"name" json:"name"`
	Price    Money  `bson:"price" json:"price"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// Order is stored twice: in the global ledger and in the owning student's
// mirror. The global copy is authoritative.
type Order struct {
	ID              string      `bson:"_id" json:"id"`
	PID             string      `bson:"pid" json:"pid"`
	Items           []OrderItem `bson:"items" json:"items"`
	Total           Money       `bson:"total" json:"total"`
	Status          OrderStatus `bson:"status" json:"status"`
	PaymentCode     string      `bson:"paymentCode" json:"paymentCode"`
	PaymentVerified bool        `bson:"paymentVerified" json:"paymentVerified"`
	CreatedAt       time.Time   `bson:"createdAt" json:"createdAt"`
	CancelledAt     *time.Time  `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	UpdatedAt       time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// PaymentCodeReservation makes code allocation collision free. OrderID is
// empty until the order holding the code has been written.
type PaymentCodeReservation struct {
	Code      string    `bson:"_id" json:"code"`
	OrderID   string    `bson:"orderId" json:"orderId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
