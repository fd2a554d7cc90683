package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

type staffRepo struct{ col *mongo.Collection }

func (r staffRepo) GetByEmail(ctx context.Context, email string) (models.StaffAccount, error) {
	var account models.StaffAccount
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	return account, translate(err)
}

func (r staffRepo) GetByID(ctx context.Context, id primitive.ObjectID) (models.StaffAccount, error) {
	var account models.StaffAccount
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	return account, translate(err)
}

func (r staffRepo) Ensure(ctx context.Context, account models.StaffAccount) error {
	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	_, err := r.col.UpdateOne(
		ctx,
		bson.M{"email": account.Email},
		bson.M{"$setOnInsert": account},
		options.Update().SetUpsert(true),
	)
	return translate(err)
}

type tokenRepo struct{ col *mongo.Collection }

func (r tokenRepo) Insert(ctx context.Context, token models.RefreshToken) (primitive.ObjectID, error) {
	if token.ID.IsZero() {
		token.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, token); err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return token.ID, nil
}

func (r tokenRepo) FindActive(ctx context.Context, tokenHash string) (models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.col.FindOne(ctx, bson.M{"tokenHash": tokenHash, "revoked": false}).Decode(&token)
	return token, translate(err)
}

func (r tokenRepo) Revoke(ctx context.Context, id primitive.ObjectID, replacedBy *primitive.ObjectID) error {
	set := bson.M{"revoked": true}
	if replacedBy != nil {
		set["replacedByToken"] = *replacedBy
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r tokenRepo) RevokeByHash(ctx context.Context, tokenHash string) (bool, error) {
	res, err := r.col.UpdateOne(
		ctx,
		bson.M{"tokenHash": tokenHash, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
