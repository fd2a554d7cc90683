package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ensureIndexes(db *mongo.Database, collection string, models ...mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := log.With().Str("component", "database").Str("collection", collection).Logger()
	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		logger.Error().Err(err).Msg("index creation failed")
		return err
	}
	logger.Info().Strs("indexes", names).Msg("indexes ensured")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	if err := ensureIndexes(db, colOrders,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "paymentCode", Value: 1}},
			Options: options.Index().SetName("paymentCode_unique").SetUnique(true),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "pid", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("pid_status_createdAt"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("status_createdAt"),
		},
	); err != nil {
		return err
	}
	return ensureIndexes(db, colStudentOrders,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "pid", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("pid_createdAt"),
		},
	)
}

func EnsureMenuIndexes(db *mongo.Database) error {
	return ensureIndexes(db, colMenu,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_index"),
		},
	)
}

func EnsureStaffIndexes(db *mongo.Database) error {
	if err := ensureIndexes(db, colStaff,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
	); err != nil {
		return err
	}
	return ensureIndexes(db, colRefreshTokens,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "tokenHash", Value: 1}},
			Options: options.Index().SetName("tokenHash_index"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetName("expiresAt_ttl").SetExpireAfterSeconds(0),
		},
	)
}

// EnsureIndexes creates every index the service relies on.
func EnsureIndexes(db *mongo.Database) error {
	for _, ensure := range []func(*mongo.Database) error{EnsureOrderIndexes, EnsureMenuIndexes, EnsureStaffIndexes} {
		if err := ensure(db); err != nil {
			return err
		}
	}
	return nil
}
