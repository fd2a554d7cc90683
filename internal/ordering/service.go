// Package ordering implements the canteen order lifecycle: payment code
// issuance, carts, the order ledger, payment verification, the cancellation
// blocking policy and the menu catalog.
package ordering

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

// Publisher receives lifecycle events after the ledger write succeeded.
// Publish must not block on the network.
type Publisher interface {
	Publish(ctx context.Context, event models.OrderEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, models.OrderEvent) {}

type Options struct {
	CancelThreshold int
	CancelWindow    time.Duration
	CodeAttempts    int
	Publisher       Publisher
	// Clock overrides time.Now, mainly for tests.
	Clock func() time.Time
}

const (
	DefaultCancelThreshold = 3
	DefaultCancelWindow    = 24 * time.Hour
)

type Service struct {
	store     *store.Store
	codes     *CodeGenerator
	blocking  *BlockingPolicy
	publisher Publisher
	now       func() time.Time
	logger    zerolog.Logger
}

func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func NewService(st *store.Store, opts Options) *Service {
	now := opts.Clock
	if now == nil {
		now = defaultClock
	}
	pub := opts.Publisher
	if pub == nil {
		pub = nopPublisher{}
	}
	svc := &Service{
		store:     st,
		codes:     NewCodeGenerator(st.PaymentCodes, opts.CodeAttempts, now),
		publisher: pub,
		now:       now,
		logger:    log.With().Str("component", "ordering").Logger(),
	}
	svc.blocking = NewBlockingPolicy(st.Students, st.Orders, opts.CancelThreshold, opts.CancelWindow, pub, now)
	return svc
}

// Codes exposes the generator, mainly so tests can swap its source.
func (s *Service) Codes() *CodeGenerator { return s.codes }

func (s *Service) Blocking() *BlockingPolicy { return s.blocking }

func newID() string {
	return primitive.NewObjectID().Hex()
}

func (s *Service) publish(ctx context.Context, eventType string, order models.Order) {
	total := order.Total
	s.publisher.Publish(ctx, models.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		PID:        order.PID,
		Status:     order.Status,
		Total:      &total,
		OccurredAt: s.now(),
	})
}
