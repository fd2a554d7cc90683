package ordering

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vrjatclg/Time2Eat/internal/store"
)

const (
	CodeAlphabet        = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength          = 6
	DefaultCodeAttempts = 10
)

// CodeGenerator mints payment codes that are unique across every order ever
// placed. Uniqueness comes from the reservation store, not from the draw.
type CodeGenerator struct {
	codes    store.PaymentCodes
	attempts int
	draw     func() (string, error)
	now      func() time.Time
}

func NewCodeGenerator(codes store.PaymentCodes, attempts int, now func() time.Time) *CodeGenerator {
	if attempts <= 0 {
		attempts = DefaultCodeAttempts
	}
	if now == nil {
		now = defaultClock
	}
	return &CodeGenerator{codes: codes, attempts: attempts, draw: RandomCode, now: now}
}

// RandomCode draws CodeLength symbols uniformly from CodeAlphabet. The
// alphabet has 32 symbols so byte%32 carries no modulo bias.
func RandomCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, CodeLength)
	for i, b := range buf {
		out[i] = CodeAlphabet[int(b)%len(CodeAlphabet)]
	}
	return string(out), nil
}

// Generate reserves and returns a fresh code. Collisions are retried up to
// the attempt budget; any other store failure aborts at once.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= g.attempts; attempt++ {
		code, err := g.draw()
		if err != nil {
			return "", fmt.Errorf("draw payment code: %w", err)
		}
		err = g.codes.Reserve(ctx, code, g.now())
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return "", fmt.Errorf("reserve payment code: %w", err)
		}
		log.Debug().Str("component", "codes").Int("attempt", attempt).Msg("payment code collision")
	}
	return "", ExhaustedError{Attempts: g.attempts}
}

// Attach records the order that owns a reserved code.
func (g *CodeGenerator) Attach(ctx context.Context, code, orderID string) error {
	return g.codes.Attach(ctx, code, orderID)
}

// NormalizeCode brings user input into the stored form.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
