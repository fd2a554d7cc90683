package ordering

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrjatclg/Time2Eat/internal/models"
)

func TestVerifyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "tea", "Tea", "10", true)
	order := f.placeOne(t, "STU1")

	first, err := f.svc.VerifyPaymentCode(ctx, order.PaymentCode)
	require.NoError(t, err)
	assert.False(t, first.AlreadyVerified)

	f.clock.Advance(time.Minute)
	second, err := f.svc.VerifyPaymentCode(ctx, " "+order.PaymentCode+" ")
	require.NoError(t, err)
	assert.True(t, second.AlreadyVerified)
	assert.Equal(t, first.Order, second.Order)
	assert.Equal(t, first.PID, second.PID)

	verifiedEvents := 0
	for _, typ := range f.pub.Types() {
		if typ == models.EventOrderVerified {
			verifiedEvents++
		}
	}
	assert.Equal(t, 1, verifiedEvents)
}

func TestVerifyUnknownCode(t *testing.T) {
	f := newFixture(t)
	for _, code := range []string{"", "   ", "ZZZZZZ"} {
		_, err := f.svc.VerifyPaymentCode(context.Background(), code)
		assert.Equal(t, KindInvalidCode, KindOf(err), "code %q", code)
	}
}

func TestVerifyCancelledOrderIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "tea", "Tea", "10", true)
	order := f.placeOne(t, "STU1")
	_, err := f.svc.CancelOrder(ctx, "STU1", order.ID)
	require.NoError(t, err)

	_, err = f.svc.VerifyPaymentCode(ctx, order.PaymentCode)
	assert.Equal(t, KindInvalidTransition, KindOf(err))

	current, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, current.PaymentVerified)
}

func TestConcurrentVerifyMutatesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMenuItem(t, "tea", "Tea", "10", true)
	order := f.placeOne(t, "STU1")

	var wg sync.WaitGroup
	results := make([]Verification, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.VerifyPaymentCode(ctx, order.PaymentCode)
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := range results {
		require.NoError(t, errs[i])
		assert.True(t, results[i].Order.PaymentVerified)
		if !results[i].AlreadyVerified {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)
}
