package ordering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartLoadMergesByMax(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "A", "Aloo Paratha", "30", true)
	f.addMenuItem(t, "B", "Bun Maska", "15", true)
	require.NoError(t, f.st.Carts.Put(ctx, "STU1", map[string]int{"A": 2, "B": 1}, f.clock.Now()))

	cart := f.svc.NewCart()
	require.NoError(t, cart.Add(ctx, "A"))
	require.NoError(t, cart.Load(ctx, "STU1"))

	assert.Equal(t, map[string]int{"A": 2, "B": 1}, cart.Items())
	assert.Equal(t, 3, cart.Count())
}

func TestCartLoadDropsDeletedMenuItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "A", "Aloo Paratha", "30", true)
	require.NoError(t, f.st.Carts.Put(ctx, "STU1", map[string]int{"A": 1, "gone": 4}, f.clock.Now()))

	cart := f.svc.NewCart()
	require.NoError(t, cart.Load(ctx, "STU1"))
	assert.Equal(t, map[string]int{"A": 1}, cart.Items())
}

func TestCartEditing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "A", "Aloo Paratha", "30", true)
	f.addMenuItem(t, "B", "Bun Maska", "15", true)
	f.addMenuItem(t, "C", "Cold Coffee", "40", false)

	cart := f.svc.NewCart()
	require.NoError(t, cart.Add(ctx, "A"))
	require.NoError(t, cart.Add(ctx, "A"))
	require.NoError(t, cart.Add(ctx, "B"))

	err := cart.Add(ctx, "C")
	assert.Equal(t, KindItemUnavailable, KindOf(err))
	err = cart.Add(ctx, "Z")
	assert.Equal(t, KindItemUnavailable, KindOf(err))

	cart.ChangeQty("A", 3)
	cart.ChangeQty("B", -1)
	assert.Equal(t, map[string]int{"A": 5}, cart.Items())

	cart.ChangeQty("A", -10)
	assert.Empty(t, cart.Items())

	require.NoError(t, cart.Add(ctx, "B"))
	cart.Remove("B")
	assert.Equal(t, 0, cart.Count())
}

func TestCartPersistAndClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "A", "Aloo Paratha", "30", true)
	f.addMenuItem(t, "B", "Bun Maska", "15", true)

	cart := f.svc.NewCart()
	require.NoError(t, cart.Add(ctx, "B"))
	require.NoError(t, cart.Add(ctx, "A"))
	require.NoError(t, cart.Persist(ctx, "STU1"))

	assert.Equal(t, []LineItem{{ItemID: "A", Quantity: 1}, {ItemID: "B", Quantity: 1}}, cart.Lines())

	saved, err := f.svc.GetCart(ctx, "stu1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, saved)

	require.NoError(t, cart.Clear(ctx, "STU1"))
	assert.Empty(t, cart.Items())
	saved, err = f.svc.GetCart(ctx, "STU1")
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSetCartDropsNonPositive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	got, err := f.svc.SetCart(ctx, "STU1", map[string]int{"A": 2, "B": 0, "C": -1})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 2}, got)

	require.NoError(t, f.svc.ClearCart(ctx, "STU1"))
	saved, err := f.svc.GetCart(ctx, "STU1")
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestMergeCartKeepsLargerQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "A", "Aloo Paratha", "30", true)
	f.addMenuItem(t, "B", "Bun Maska", "15", true)
	_, err := f.svc.SetCart(ctx, "STU1", map[string]int{"A": 2, "B": 1})
	require.NoError(t, err)

	merged, err := f.svc.MergeCart(ctx, "STU1", map[string]int{"A": 1, "B": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 2, "B": 3}, merged)

	saved, err := f.svc.GetCart(ctx, "STU1")
	require.NoError(t, err)
	assert.Equal(t, merged, saved)
}

func TestMergeCartDropsUnknownItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "A", "Aloo Paratha", "30", true)
	f.addMenuItem(t, "B", "Bun Maska", "15", false)

	merged, err := f.svc.MergeCart(ctx, "STU1", map[string]int{"A": 1, "B": 2, "GHOST": 3, "ZERO": 0})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 1, "B": 2}, merged)

	saved, err := f.svc.GetCart(ctx, "STU1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 1, "B": 2}, saved)
}

func TestCheckoutUsesStoredCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "A", "Aloo Paratha", "30", true)
	f.addMenuItem(t, "B", "Bun Maska", "15", true)

	_, err := f.svc.Checkout(ctx, "STU1")
	assert.Equal(t, KindEmptyCart, KindOf(err))

	_, err = f.svc.UpdateCart(ctx, "STU1", func(c *Cart) error {
		if err := c.Add(ctx, "A"); err != nil {
			return err
		}
		c.ChangeQty("B", 2)
		return nil
	})
	require.NoError(t, err)

	order, err := f.svc.Checkout(ctx, "STU1")
	require.NoError(t, err)
	assert.Equal(t, "60", order.Total.String())

	saved, err := f.svc.GetCart(ctx, "STU1")
	require.NoError(t, err)
	assert.Empty(t, saved)
}
