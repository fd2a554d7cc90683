package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

func orderFilter(f store.OrderFilter) bson.M {
	filter := bson.M{}
	if f.PID != "" {
		filter["pid"] = f.PID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.Since.IsZero() {
		filter["createdAt"] = bson.M{"$gte": f.Since}
	}
	return filter
}

func guardFilter(id string, g store.OrderGuard) bson.M {
	filter := bson.M{"_id": id}
	if g.PID != "" {
		filter["pid"] = g.PID
	}
	if len(g.Statuses) > 0 {
		filter["status"] = bson.M{"$in": g.Statuses}
	}
	if g.PaymentVerified != nil {
		filter["paymentVerified"] = *g.PaymentVerified
	}
	return filter
}

func patchUpdate(p store.OrderPatch) bson.M {
	set := bson.M{"updatedAt": p.UpdatedAt}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.PaymentVerified != nil {
		set["paymentVerified"] = *p.PaymentVerified
	}
	if p.CancelledAt != nil {
		set["cancelledAt"] = *p.CancelledAt
	}
	return bson.M{"$set": set}
}

func findOrders(ctx context.Context, col *mongo.Collection, f store.OrderFilter) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cursor, err := col.Find(ctx, orderFilter(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

type orderRepo struct{ col *mongo.Collection }

func (r orderRepo) Insert(ctx context.Context, order models.Order) error {
	_, err := r.col.InsertOne(ctx, order)
	return translate(err)
}

func (r orderRepo) Get(ctx context.Context, id string) (models.Order, error) {
	var order models.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	return order, translate(err)
}

func (r orderRepo) GetByPaymentCode(ctx context.Context, code string) (models.Order, error) {
	var order models.Order
	err := r.col.FindOne(ctx, bson.M{"paymentCode": code}).Decode(&order)
	return order, translate(err)
}

func (r orderRepo) Update(ctx context.Context, id string, guard store.OrderGuard, patch store.OrderPatch) (models.Order, error) {
	var order models.Order
	err := r.col.FindOneAndUpdate(
		ctx,
		guardFilter(id, guard),
		patchUpdate(patch),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	return order, translate(err)
}

func (r orderRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r orderRepo) Find(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	return findOrders(ctx, r.col, f)
}

func (r orderRepo) Count(ctx context.Context, f store.OrderFilter) (int64, error) {
	return r.col.CountDocuments(ctx, orderFilter(f))
}

// studentOrderRepo keeps the mirror in one collection keyed by order id with
// the owning pid on every document.
type studentOrderRepo struct{ col *mongo.Collection }

func (r studentOrderRepo) Put(ctx context.Context, order models.Order) error {
	_, err := r.col.ReplaceOne(
		ctx,
		bson.M{"_id": order.ID, "pid": order.PID},
		order,
		options.Replace().SetUpsert(true),
	)
	return translate(err)
}

func (r studentOrderRepo) Update(ctx context.Context, pid, id string, patch store.OrderPatch) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "pid": pid}, patchUpdate(patch))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r studentOrderRepo) Delete(ctx context.Context, pid, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "pid": pid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r studentOrderRepo) Find(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	return findOrders(ctx, r.col, f)
}
