package database

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

func TestOrderFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, orderFilter(store.OrderFilter{}))

	since := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	got := orderFilter(store.OrderFilter{PID: "STU1", Status: models.StatusCancelled, Since: since, Limit: 5})
	assert.Equal(t, bson.M{
		"pid":       "STU1",
		"status":    models.StatusCancelled,
		"createdAt": bson.M{"$gte": since},
	}, got)
}

func TestGuardFilter(t *testing.T) {
	unverified := false
	got := guardFilter("o1", store.OrderGuard{
		PID:             "STU1",
		Statuses:        []models.OrderStatus{models.StatusPlaced},
		PaymentVerified: &unverified,
	})
	assert.Equal(t, bson.M{
		"_id":             "o1",
		"pid":             "STU1",
		"status":          bson.M{"$in": []models.OrderStatus{models.StatusPlaced}},
		"paymentVerified": false,
	}, got)

	assert.Equal(t, bson.M{"_id": "o2"}, guardFilter("o2", store.OrderGuard{}))
}

func TestPatchUpdate(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	status := models.StatusVerified
	verified := true

	got := patchUpdate(store.OrderPatch{Status: &status, PaymentVerified: &verified, UpdatedAt: now})
	assert.Equal(t, bson.M{"$set": bson.M{
		"status":          models.StatusVerified,
		"paymentVerified": true,
		"updatedAt":       now,
	}}, got)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), store.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translate(dup), store.ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}
