package ordering

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrjatclg/Time2Eat/internal/store/memory"
)

func TestRandomCodeUsesRestrictedAlphabet(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := RandomCode()
		require.NoError(t, err)
		require.Len(t, code, CodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(CodeAlphabet, r), "unexpected symbol %q in %s", r, code)
		}
		assert.NotContainsf(t, code, "0", "code %s", code)
		assert.NotContainsf(t, code, "O", "code %s", code)
		assert.NotContainsf(t, code, "1", "code %s", code)
		assert.NotContainsf(t, code, "I", "code %s", code)
	}
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	st, db := memory.New()
	ctx := context.Background()
	require.NoError(t, st.PaymentCodes.Reserve(ctx, "AAAAAA", time.Now()))

	gen := NewCodeGenerator(st.PaymentCodes, 10, nil)
	gen.draw = scriptedDraw("AAAAAA", "BBBBBB")

	code, err := gen.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", code)
	assert.Equal(t, 2, db.ReservationCount())
}

func TestGenerateExhaustsAttemptBudget(t *testing.T) {
	st, _ := memory.New()
	ctx := context.Background()
	require.NoError(t, st.PaymentCodes.Reserve(ctx, "AAAAAA", time.Now()))

	gen := NewCodeGenerator(st.PaymentCodes, 3, nil)
	draws := 0
	gen.draw = func() (string, error) {
		draws++
		return "AAAAAA", nil
	}

	_, err := gen.Generate(ctx)
	var exhausted ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, 3, draws)
	assert.Equal(t, KindExhausted, KindOf(err))
}

type failingCodes struct{ err error }

func (f failingCodes) Reserve(context.Context, string, time.Time) error { return f.err }
func (f failingCodes) Attach(context.Context, string, string) error     { return f.err }

func TestGenerateDoesNotRetryStoreFailures(t *testing.T) {
	boom := errors.New("connection reset")
	gen := NewCodeGenerator(failingCodes{err: boom}, 10, nil)
	draws := 0
	gen.draw = func() (string, error) {
		draws++
		return "CCCCCC", nil
	}

	_, err := gen.Generate(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, draws)
	assert.Equal(t, Kind(""), KindOf(err))
}

func TestGeneratedCodesAreUnique(t *testing.T) {
	st, _ := memory.New()
	gen := NewCodeGenerator(st.PaymentCodes, 10, nil)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := gen.Generate(context.Background())
		require.NoError(t, err)
		require.False(t, seen[code], "code %s issued twice", code)
		seen[code] = true
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "AB3KQZ", NormalizeCode("  ab3kqz "))
	assert.Equal(t, "", NormalizeCode("   "))
}
