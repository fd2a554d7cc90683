package ordering

import (
	"errors"
	"fmt"

	"github.com/vrjatclg/Time2Eat/internal/models"
)

// Kind classifies ordering failures for callers that map them onto a
// transport (HTTP status, error code).
type Kind string

const (
	KindValidation        Kind = "validation"
	KindEmptyCart         Kind = "empty_cart"
	KindItemUnavailable   Kind = "item_unavailable"
	KindBlocked           Kind = "blocked"
	KindNotFound          Kind = "not_found"
	KindInvalidCode       Kind = "invalid_code"
	KindNotCancellable    Kind = "not_cancellable"
	KindExhausted         Kind = "exhausted"
	KindInvalidTransition Kind = "invalid_transition"
)

type kinded interface {
	Kind() Kind
}

// KindOf returns the kind of the first typed ordering error in err's chain,
// or "" when err carries none.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (ValidationError) Kind() Kind { return KindValidation }

type EmptyCartError struct {
	PID string
}

func (e EmptyCartError) Error() string {
	return "cart is empty"
}

func (EmptyCartError) Kind() Kind { return KindEmptyCart }

type ItemUnavailableError struct {
	ItemID string
}

func (e ItemUnavailableError) Error() string {
	return fmt.Sprintf("menu item %s is not available", e.ItemID)
}

func (ItemUnavailableError) Kind() Kind { return KindItemUnavailable }

type BlockedError struct {
	PID string
}

func (e BlockedError) Error() string {
	return fmt.Sprintf("student %s is blocked from ordering", e.PID)
}

func (BlockedError) Kind() Kind { return KindBlocked }

type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (NotFoundError) Kind() Kind { return KindNotFound }

type InvalidCodeError struct {
	Code string
}

func (e InvalidCodeError) Error() string {
	return "invalid payment code"
}

func (InvalidCodeError) Kind() Kind { return KindInvalidCode }

type NotCancellableError struct {
	OrderID         string
	Status          models.OrderStatus
	PaymentVerified bool
}

func (e NotCancellableError) Error() string {
	if e.PaymentVerified {
		return fmt.Sprintf("order %s is already paid and cannot be cancelled", e.OrderID)
	}
	return fmt.Sprintf("order %s is %s and cannot be cancelled", e.OrderID, e.Status)
}

func (NotCancellableError) Kind() Kind { return KindNotCancellable }

// ExhaustedError means no unique payment code was found within the attempt
// budget.
type ExhaustedError struct {
	Attempts int
}

func (e ExhaustedError) Error() string {
	return fmt.Sprintf("could not reserve a unique payment code after %d attempts", e.Attempts)
}

func (ExhaustedError) Kind() Kind { return KindExhausted }

type InvalidTransitionError struct {
	OrderID string
	From    models.OrderStatus
	To      models.OrderStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s cannot move from %s to %s", e.OrderID, e.From, e.To)
}

func (InvalidTransitionError) Kind() Kind { return KindInvalidTransition }
