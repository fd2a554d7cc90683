package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is an exact decimal amount. It is stored as Decimal128 so totals
// computed from line items round-trip without float drift.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func MoneyFromInt(v int64) Money {
	return Money{Decimal: decimal.NewFromInt(v)}
}

func MoneyFromFloat(v float64) Money {
	return Money{Decimal: decimal.NewFromFloat(v)}
}

func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Decimal: d}, nil
}

// Times returns the line amount for qty units.
func (m Money) Times(qty int) Money {
	return Money{Decimal: m.Decimal.Mul(decimal.NewFromInt(int64(qty)))}
}

func (m Money) Plus(other Money) Money {
	return Money{Decimal: m.Decimal.Add(other.Decimal)}
}

// MarshalJSON renders the amount as a JSON number rather than a quoted string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// MarshalBSONValue always writes Decimal128.
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.Decimal.String())
	if err != nil {
		return 0, nil, err
	}
	return bson.MarshalValue(d128)
}

// UnmarshalBSONValue accepts Decimal128 as well as the numeric and string
// shapes older menu documents were written with.
func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		m.Decimal = decimal.Zero
		return nil
	case bsontype.Decimal128:
		var d128 primitive.Decimal128
		if err := bson.UnmarshalValue(t, data, &d128); err != nil {
			return err
		}
		d, err := decimal.NewFromString(d128.String())
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	case bsontype.Double:
		var f float64
		if err := bson.UnmarshalValue(t, data, &f); err != nil {
			return err
		}
		m.Decimal = decimal.NewFromFloat(f)
		return nil
	case bsontype.Int32, bsontype.Int64:
		var n int64
		if err := bson.UnmarshalValue(t, data, &n); err != nil {
			return err
		}
		m.Decimal = decimal.NewFromInt(n)
		return nil
	case bsontype.String:
		var s string
		if err := bson.UnmarshalValue(t, data, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	default:
		return fmt.Errorf("cannot decode %s into Money", t)
	}
}
