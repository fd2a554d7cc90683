package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vrjatclg/Time2Eat/internal/store"
)

const (
	colMenu          = "menu_items"
	colStudents      = "students"
	colCarts         = "carts"
	colOrders        = "orders"
	colStudentOrders = "student_orders"
	colPaymentCodes  = "payment_codes"
	colStaff         = "staff"
	colRefreshTokens = "refresh_tokens"
)

func Connect(uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI is empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

type pinger struct{ client *mongo.Client }

func (p pinger) Ping(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.client.Ping(checkCtx, readpref.Primary())
}

// NewStore wires every repository to collections of db.
func NewStore(db *mongo.Database) *store.Store {
	log.Debug().Str("component", "database").Str("db", db.Name()).Msg("mongo store ready")
	return &store.Store{
		Menu:          menuRepo{col: db.Collection(colMenu)},
		Students:      studentRepo{col: db.Collection(colStudents)},
		Carts:         cartRepo{col: db.Collection(colCarts)},
		Orders:        orderRepo{col: db.Collection(colOrders)},
		StudentOrders: studentOrderRepo{col: db.Collection(colStudentOrders)},
		PaymentCodes:  codeRepo{col: db.Collection(colPaymentCodes)},
		Staff:         staffRepo{col: db.Collection(colStaff)},
		RefreshTokens: tokenRepo{col: db.Collection(colRefreshTokens)},
		Pinger:        pinger{client: db.Client()},
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	default:
		return err
	}
}
