package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vrjatclg/Time2Eat/internal/cache"
	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/ordering"
)

type createOrderItemRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity"`
}

type createOrderRequest struct {
	PID   string                   `json:"pid" binding:"required"`
	Items []createOrderItemRequest `json:"items" binding:"dive"`
}

// IdempotencyStore remembers which order an Idempotency-Key produced and
// for which request.
type IdempotencyStore interface {
	Lookup(ctx context.Context, pid, clientKey string) (cache.Record, bool, error)
	Remember(ctx context.Context, pid, clientKey string, rec cache.Record) error
}

const idempotencyHeader = "Idempotency-Key"

func CreateOrder(svc *ordering.Service, idem IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		lines := make([]ordering.LineItem, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, ordering.LineItem{ItemID: item.ItemID, Quantity: item.Quantity})
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		placeWithIdempotency(ctx, c, route, svc, idem, req.PID, linesFingerprint(lines), func() (models.Order, error) {
			return svc.PlaceOrder(ctx, req.PID, lines)
		})
	}
}

// Checkout places an order from the student's stored cart.
func Checkout(svc *ordering.Service, idem IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /students/:pid/checkout"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		pid := c.Param("pid")
		placeWithIdempotency(ctx, c, route, svc, idem, pid, cache.Fingerprint("checkout"), func() (models.Order, error) {
			return svc.Checkout(ctx, pid)
		})
	}
}

// linesFingerprint identifies an item list independent of its order.
func linesFingerprint(lines []ordering.LineItem) string {
	parts := make([]string, 0, len(lines)+1)
	parts = append(parts, "order")
	for _, l := range lines {
		parts = append(parts, l.ItemID+":"+strconv.Itoa(l.Quantity))
	}
	sort.Strings(parts[1:])
	return cache.Fingerprint(parts...)
}

func placeWithIdempotency(ctx context.Context, c *gin.Context, route string, svc *ordering.Service, idem IdempotencyStore, rawPID, fingerprint string, place func() (models.Order, error)) {
	clientKey := c.GetHeader(idempotencyHeader)
	var pid string
	if idem != nil && clientKey != "" {
		var err error
		pid, err = ordering.CanonicalPID(rawPID)
		if err != nil {
			respondWithOrderingError(c, route, err)
			return
		}
		rec, found, err := idem.Lookup(ctx, pid, clientKey)
		if errors.Is(err, cache.ErrInvalidKey) {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if err != nil {
			log.Warn().Str("component", "http").Err(err).Msg("idempotency lookup failed")
		}
		if found && !rec.Matches(fingerprint) {
			log.Warn().Str("component", "http").Str("route", route).Str("pid", pid).Msg("idempotency key reused with a different request")
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Idempotency-Key was already used for a different request",
				"code":  "idempotency_mismatch",
			})
			return
		}
		if found {
			order, err := svc.GetOrder(ctx, rec.OrderID)
			if err == nil {
				c.JSON(http.StatusOK, gin.H{
					"orderId":     order.ID,
					"paymentCode": order.PaymentCode,
					"order":       order,
					"idempotent":  true,
				})
				return
			}
			log.Warn().Str("component", "http").Err(err).Str("orderId", rec.OrderID).Msg("remembered order missing")
		}
	}

	order, err := place()
	if err != nil {
		respondWithOrderingError(c, route, err)
		return
	}

	if idem != nil && clientKey != "" {
		if err := idem.Remember(ctx, pid, clientKey, cache.Record{OrderID: order.ID, Fingerprint: fingerprint}); err != nil {
			log.Warn().Str("component", "http").Err(err).Msg("idempotency remember failed")
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"orderId":     order.ID,
		"paymentCode": order.PaymentCode,
		"order":       order,
		"idempotent":  false,
		"message":     "order created",
	})
}
