package ordering

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
	"github.com/vrjatclg/Time2Eat/internal/store/memory"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e models.OrderEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc   *Service
	st    *store.Store
	db    *memory.DB
	clock *fakeClock
	pub   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, db := memory.New()
	clock := &fakeClock{t: time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)}
	pub := &recordingPublisher{}
	svc := NewService(st, Options{Publisher: pub, Clock: clock.Now})
	return &fixture{svc: svc, st: st, db: db, clock: clock, pub: pub}
}

func (f *fixture) addMenuItem(t *testing.T, id, name, price string, available bool) models.MenuItem {
	t.Helper()
	p, err := models.ParseMoney(price)
	require.NoError(t, err)
	item := models.MenuItem{
		ID:        id,
		Name:      name,
		Price:     p,
		Available: available,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, f.st.Menu.Insert(context.Background(), item))
	return item
}

func (f *fixture) placeOne(t *testing.T, pid string) models.Order {
	t.Helper()
	order, err := f.svc.PlaceOrder(context.Background(), pid, []LineItem{{ItemID: "tea", Quantity: 1}})
	require.NoError(t, err)
	return order
}

// scriptedDraw returns the given codes in order, then falls back to random.
func scriptedDraw(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i < len(codes) {
			i++
			return codes[i-1], nil
		}
		return RandomCode()
	}
}
