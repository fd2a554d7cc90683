// Package cache holds the Redis shortcuts used in front of the document
// store. MongoDB stays the source of truth; a Redis outage only disables the
// shortcut.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// idem:order:create:{pid}:{client key} -> {"orderId": "...", "fingerprint": "..."}
	KeyIdemOrderCreate = "idem:order:create:%s:%s"

	TTLIdempotency = 24 * time.Hour
	maxClientKey   = 128
)

var ErrInvalidKey = errors.New("idempotency key must be 1-128 characters")

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// Idempotency remembers which order a client's Idempotency-Key created.
type Idempotency struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewIdempotency(rdb redis.Cmdable) *Idempotency {
	return &Idempotency{rdb: rdb, ttl: TTLIdempotency}
}

func KeyFor(pid, clientKey string) (string, error) {
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" || len(clientKey) > maxClientKey {
		return "", ErrInvalidKey
	}
	return fmt.Sprintf(KeyIdemOrderCreate, pid, clientKey), nil
}

// Record is what a client key resolves to. Fingerprint identifies the request
// that created the order so a reused key with a different body can be told
// apart from a retry.
type Record struct {
	OrderID     string `json:"orderId"`
	Fingerprint string `json:"fingerprint"`
}

// Fingerprint hashes the request parts in order.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func encodeRecord(r Record) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeRecord also accepts bare order ids written before records carried a
// fingerprint; those match any request.
func decodeRecord(raw string) Record {
	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil || r.OrderID == "" {
		return Record{OrderID: raw}
	}
	return r
}

// Matches reports whether fingerprint belongs to the request that stored r.
func (r Record) Matches(fingerprint string) bool {
	return r.Fingerprint == "" || r.Fingerprint == fingerprint
}

// Lookup returns the record stored for the key, if any.
func (i *Idempotency) Lookup(ctx context.Context, pid, clientKey string) (Record, bool, error) {
	key, err := KeyFor(pid, clientKey)
	if err != nil {
		return Record{}, false, err
	}
	raw, err := i.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return decodeRecord(raw), true, nil
}

// Remember stores rec for the key unless one is stored already.
func (i *Idempotency) Remember(ctx context.Context, pid, clientKey string, rec Record) error {
	key, err := KeyFor(pid, clientKey)
	if err != nil {
		return err
	}
	value, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return i.rdb.SetNX(ctx, key, value, i.ttl).Err()
}
