package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

type menuRepo struct{ col *mongo.Collection }

func (r menuRepo) List(ctx context.Context, onlyAvailable bool) ([]models.MenuItem, error) {
	filter := bson.M{}
	if onlyAvailable {
		filter["available"] = true
	}
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.MenuItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r menuRepo) Get(ctx context.Context, id string) (models.MenuItem, error) {
	var item models.MenuItem
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	return item, translate(err)
}

func (r menuRepo) Insert(ctx context.Context, item models.MenuItem) error {
	_, err := r.col.InsertOne(ctx, item)
	return translate(err)
}

func (r menuRepo) Update(ctx context.Context, id string, p store.MenuPatch) (models.MenuItem, error) {
	set := bson.M{"updatedAt": p.UpdatedAt}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.ImageURL != nil {
		set["imageUrl"] = *p.ImageURL
	}
	if p.Available != nil {
		set["available"] = *p.Available
	}

	var item models.MenuItem
	err := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	return item, translate(err)
}

func (r menuRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type studentRepo struct{ col *mongo.Collection }

func (r studentRepo) Get(ctx context.Context, pid string) (models.Student, error) {
	var s models.Student
	err := r.col.FindOne(ctx, bson.M{"_id": pid}).Decode(&s)
	return s, translate(err)
}

func (r studentRepo) Ensure(ctx context.Context, pid string, now time.Time) error {
	_, err := r.col.UpdateOne(
		ctx,
		bson.M{"_id": pid},
		bson.M{
			"$setOnInsert": bson.M{"blocked": false, "createdAt": now},
			"$set":         bson.M{"updatedAt": now},
		},
		options.Update().SetUpsert(true),
	)
	return translate(err)
}

func (r studentRepo) SetBlocked(ctx context.Context, pid string, blocked bool, now time.Time) error {
	_, err := r.col.UpdateOne(
		ctx,
		bson.M{"_id": pid},
		bson.M{
			"$setOnInsert": bson.M{"createdAt": now},
			"$set":         bson.M{"blocked": blocked, "updatedAt": now},
		},
		options.Update().SetUpsert(true),
	)
	return translate(err)
}

type cartRepo struct{ col *mongo.Collection }

func (r cartRepo) Get(ctx context.Context, pid string) (map[string]int, error) {
	var snap models.CartSnapshot
	err := r.col.FindOne(ctx, bson.M{"_id": pid}).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, err
	}
	if snap.Items == nil {
		snap.Items = map[string]int{}
	}
	return snap.Items, nil
}

func (r cartRepo) Put(ctx context.Context, pid string, items map[string]int, now time.Time) error {
	snap := models.CartSnapshot{PID: pid, Items: items, UpdatedAt: now}
	if snap.Items == nil {
		snap.Items = map[string]int{}
	}
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": pid}, snap, options.Replace().SetUpsert(true))
	return translate(err)
}

type codeRepo struct{ col *mongo.Collection }

// Reserve relies on _id uniqueness so two concurrent reservations of the same
// code cannot both succeed.
func (r codeRepo) Reserve(ctx context.Context, code string, now time.Time) error {
	_, err := r.col.InsertOne(ctx, models.PaymentCodeReservation{Code: code, CreatedAt: now})
	return translate(err)
}

func (r codeRepo) Attach(ctx context.Context, code, orderID string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": code}, bson.M{"$set": bson.M{"orderId": orderID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
