package ordering

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

// LineItem is one requested item of an order before it is priced.
type LineItem struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// Cart is the working cart of one session. It is not safe for concurrent use
// and is never shared between sessions.
type Cart struct {
	menu  store.Menu
	carts store.Carts
	now   func() time.Time
	items map[string]int
}

func (s *Service) NewCart() *Cart {
	return &Cart{
		menu:  s.store.Menu,
		carts: s.store.Carts,
		now:   s.now,
		items: map[string]int{},
	}
}

// Add puts one more unit of itemID in the cart. Only available items can be
// added.
func (c *Cart) Add(ctx context.Context, itemID string) error {
	item, err := c.menu.Get(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return ItemUnavailableError{ItemID: itemID}
	}
	if err != nil {
		return fmt.Errorf("load menu item: %w", err)
	}
	if !item.Available {
		return ItemUnavailableError{ItemID: itemID}
	}
	c.items[itemID]++
	return nil
}

// ChangeQty adjusts the quantity by delta and drops the entry once it is no
// longer positive.
func (c *Cart) ChangeQty(itemID string, delta int) {
	q := c.items[itemID] + delta
	if q <= 0 {
		delete(c.items, itemID)
		return
	}
	c.items[itemID] = q
}

func (c *Cart) Remove(itemID string) {
	delete(c.items, itemID)
}

func (c *Cart) Items() map[string]int {
	out := make(map[string]int, len(c.items))
	for id, q := range c.items {
		out[id] = q
	}
	return out
}

// Count is the total number of units.
func (c *Cart) Count() int {
	n := 0
	for _, q := range c.items {
		n += q
	}
	return n
}

// Lines returns the cart as line items ordered by item id.
func (c *Cart) Lines() []LineItem {
	lines := make([]LineItem, 0, len(c.items))
	for id, q := range c.items {
		if q > 0 {
			lines = append(lines, LineItem{ItemID: id, Quantity: q})
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ItemID < lines[j].ItemID })
	return lines
}

// Persist overwrites the stored snapshot of pid with the cart contents.
func (c *Cart) Persist(ctx context.Context, pid string) error {
	if err := c.carts.Put(ctx, pid, positive(c.items), c.now()); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

// Load merges the stored snapshot of pid into the cart, keeping the larger
// quantity per item. Items no longer in the menu are dropped.
func (c *Cart) Load(ctx context.Context, pid string) error {
	saved, err := c.carts.Get(ctx, pid)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	return c.Merge(ctx, saved)
}

// Merge folds other into the cart, keeping the larger quantity per item.
// Ids that are not on the menu are skipped.
func (c *Cart) Merge(ctx context.Context, other map[string]int) error {
	for id, q := range other {
		if q <= 0 || q <= c.items[id] {
			continue
		}
		if _, err := c.menu.Get(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return fmt.Errorf("load menu item: %w", err)
		}
		c.items[id] = q
	}
	return nil
}

// Clear empties the cart and its stored snapshot.
func (c *Cart) Clear(ctx context.Context, pid string) error {
	c.items = map[string]int{}
	if err := c.carts.Put(ctx, pid, map[string]int{}, c.now()); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func positive(items map[string]int) map[string]int {
	out := make(map[string]int, len(items))
	for id, q := range items {
		if q > 0 {
			out[id] = q
		}
	}
	return out
}

func (s *Service) GetCart(ctx context.Context, rawPID string) (map[string]int, error) {
	pid, err := CanonicalPID(rawPID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.Carts.Get(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return positive(items), nil
}

// SetCart replaces the stored cart. Non-positive quantities are dropped.
func (s *Service) SetCart(ctx context.Context, rawPID string, items map[string]int) (map[string]int, error) {
	pid, err := CanonicalPID(rawPID)
	if err != nil {
		return nil, err
	}
	clean := positive(items)
	if err := s.store.Carts.Put(ctx, pid, clean, s.now()); err != nil {
		return nil, fmt.Errorf("persist cart: %w", err)
	}
	return clean, nil
}

func (s *Service) ClearCart(ctx context.Context, rawPID string) error {
	pid, err := CanonicalPID(rawPID)
	if err != nil {
		return err
	}
	return s.NewCart().Clear(ctx, pid)
}

// UpdateCart loads the stored cart of pid, applies mutate and persists the
// result.
func (s *Service) UpdateCart(ctx context.Context, rawPID string, mutate func(*Cart) error) (map[string]int, error) {
	pid, err := CanonicalPID(rawPID)
	if err != nil {
		return nil, err
	}
	cart := s.NewCart()
	if err := cart.Load(ctx, pid); err != nil {
		return nil, err
	}
	if err := mutate(cart); err != nil {
		return nil, err
	}
	if err := cart.Persist(ctx, pid); err != nil {
		return nil, err
	}
	return cart.Items(), nil
}

// MergeCart merges a client-side cart with the stored one and persists the
// union, keeping the larger quantity per item.
func (s *Service) MergeCart(ctx context.Context, rawPID string, local map[string]int) (map[string]int, error) {
	return s.UpdateCart(ctx, rawPID, func(c *Cart) error {
		return c.Merge(ctx, local)
	})
}

// Checkout places an order from the stored cart of pid.
func (s *Service) Checkout(ctx context.Context, rawPID string) (models.Order, error) {
	pid, err := CanonicalPID(rawPID)
	if err != nil {
		return models.Order{}, err
	}
	cart := s.NewCart()
	if err := cart.Load(ctx, pid); err != nil {
		return models.Order{}, err
	}
	return s.PlaceOrder(ctx, pid, cart.Lines())
}
