package models

import "time"

const (
	EventOrderPlaced      = "order.placed"
	EventOrderVerified    = "order.verified"
	EventOrderReady       = "order.ready"
	EventOrderFulfilled   = "order.fulfilled"
	EventOrderCancelled   = "order.cancelled"
	EventOrderDeleted     = "order.deleted"
	EventStudentBlocked   = "student.blocked"
	EventStudentUnblocked = "student.unblocked"
)

// OrderEvent is published to the event feed after a ledger mutation has been
// written. Student events carry only PID.
type OrderEvent struct {
	Type       string      `json:"type"`
	OrderID    string      `json:"orderId,omitempty"`
	PID        string      `json:"pid"`
	Status     OrderStatus `json:"status,omitempty"`
	Total      *Money      `json:"total,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}
