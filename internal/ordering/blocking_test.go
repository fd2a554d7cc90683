package ordering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

func TestThirdCancellationBlocks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "tea", "Tea", "10", true)

	for i := 0; i < 2; i++ {
		order := f.placeOne(t, "STU1")
		res, err := f.svc.CancelOrder(ctx, "STU1", order.ID)
		require.NoError(t, err)
		assert.False(t, res.Blocked)
	}

	count, err := f.svc.Blocking().CountRecentCancellations(ctx, "STU1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	third := f.placeOne(t, "STU1")
	fourth := f.placeOne(t, "STU1")

	res, err := f.svc.CancelOrder(ctx, "STU1", third.ID)
	require.NoError(t, err)
	assert.True(t, res.Blocked)

	_, err = f.svc.PlaceOrder(ctx, "STU1", []LineItem{{ItemID: "tea", Quantity: 1}})
	var blocked BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "STU1", blocked.PID)

	res, err = f.svc.CancelOrder(ctx, "STU1", fourth.ID)
	require.NoError(t, err)
	assert.True(t, res.Blocked)

	status, err := f.svc.GetStudent(ctx, "stu1")
	require.NoError(t, err)
	assert.True(t, status.Blocked)
	assert.Equal(t, 4, status.RecentCancellations)

	_, err = f.svc.SetBlocked(ctx, "STU1", false)
	require.NoError(t, err)
	order, err := f.svc.PlaceOrder(ctx, "STU1", []LineItem{{ItemID: "tea", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlaced, order.Status)

	assert.Contains(t, f.pub.Types(), models.EventStudentBlocked)
	assert.Contains(t, f.pub.Types(), models.EventStudentUnblocked)
}

func TestCancellationWindowIsRolling(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "tea", "Tea", "10", true)

	for i := 0; i < 2; i++ {
		order := f.placeOne(t, "STU1")
		_, err := f.svc.CancelOrder(ctx, "STU1", order.ID)
		require.NoError(t, err)
	}

	f.clock.Advance(24*time.Hour + time.Second)

	order := f.placeOne(t, "STU1")
	res, err := f.svc.CancelOrder(ctx, "STU1", order.ID)
	require.NoError(t, err)
	assert.False(t, res.Blocked)

	count, err := f.svc.Blocking().CountRecentCancellations(ctx, "STU1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStaffCancellationDoesNotBlockImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "tea", "Tea", "10", true)

	for i := 0; i < 3; i++ {
		order := f.placeOne(t, "STU1")
		_, err := f.svc.StaffCancelOrder(ctx, order.ID)
		require.NoError(t, err)
	}

	status, err := f.svc.GetStudent(ctx, "STU1")
	require.NoError(t, err)
	assert.False(t, status.Blocked)
	assert.Equal(t, 3, status.RecentCancellations)
}

func TestPlacingOrderNeverUnblocks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.st.Students.SetBlocked(ctx, "STU1", true, f.clock.Now()))
	require.NoError(t, f.st.Students.Ensure(ctx, "STU1", f.clock.Now()))

	status, err := f.svc.GetStudent(ctx, "STU1")
	require.NoError(t, err)
	assert.True(t, status.Blocked)
}

func TestGetStudentUnknown(t *testing.T) {
	f := newFixture(t)
	status, err := f.svc.GetStudent(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, StudentStatus{PID: "NOBODY"}, status)
}

func TestCustomThreshold(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc = NewService(f.st, Options{CancelThreshold: 1, Clock: f.clock.Now})
	f.addMenuItem(t, "tea", "Tea", "10", true)

	order := f.placeOne(t, "STU1")
	res, err := f.svc.CancelOrder(ctx, "STU1", order.ID)
	require.NoError(t, err)
	assert.True(t, res.Blocked)
}

// flakyOrders fails Count while failCount is set.
type flakyOrders struct {
	store.Orders
	failCount bool
}

func (o *flakyOrders) Count(ctx context.Context, f store.OrderFilter) (int64, error) {
	if o.failCount {
		return 0, errors.New("count unavailable")
	}
	return o.Orders.Count(ctx, f)
}

func TestCancelSucceedsWhenBlockingEvaluationFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	orders := &flakyOrders{Orders: f.st.Orders}
	f.st.Orders = orders
	f.svc = NewService(f.st, Options{Publisher: f.pub, Clock: f.clock.Now})
	f.addMenuItem(t, "tea", "Tea", "10", true)

	first := f.placeOne(t, "STU1")
	second := f.placeOne(t, "STU1")
	third := f.placeOne(t, "STU1")

	orders.failCount = true
	res, err := f.svc.CancelOrder(ctx, "STU1", first.ID)
	require.NoError(t, err)
	assert.False(t, res.Blocked)
	assert.Equal(t, models.StatusCancelled, res.Order.Status)

	stored, err := f.svc.GetOrder(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)

	orders.failCount = false
	res, err = f.svc.CancelOrder(ctx, "STU1", second.ID)
	require.NoError(t, err)
	assert.False(t, res.Blocked)

	res, err = f.svc.CancelOrder(ctx, "STU1", third.ID)
	require.NoError(t, err)
	assert.True(t, res.Blocked, "the cancellation missed by the failed evaluation still counts")
}
