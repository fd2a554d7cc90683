package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

func TestMoneyJSONIsNumber(t *testing.T) {
	m, err := ParseMoney("12.50")
	require.NoError(t, err)

	out, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{m})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price": 12.5}`, string(out))

	var in struct {
		Price Money `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price": "7.25"}`), &in))
	assert.Equal(t, "7.25", in.Price.String())
}

func TestMoneyArithmetic(t *testing.T) {
	price := MoneyFromFloat(0.1)
	total := price.Times(3).Plus(MoneyFromInt(1))
	assert.Equal(t, "1.3", total.String())
}

func TestMoneyBSONWritesDecimal128(t *testing.T) {
	doc := struct {
		Price Money `bson:"price"`
	}{MoneyFromFloat(19.99)}

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, bsontype.Decimal128, bson.Raw(raw).Lookup("price").Type)

	var back struct {
		Price Money `bson:"price"`
	}
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, "19.99", back.Price.String())
}

func TestMoneyBSONReadsLegacyShapes(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"double", 4.5, "4.5"},
		{"int32", int32(30), "30"},
		{"int64", int64(120), "120"},
		{"string", "15.75", "15.75"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"price": tt.value})
			require.NoError(t, err)

			var out struct {
				Price Money `bson:"price"`
			}
			require.NoError(t, bson.Unmarshal(raw, &out))
			assert.Equal(t, tt.want, out.Price.String())
		})
	}

	raw, err := bson.Marshal(bson.M{"price": true})
	require.NoError(t, err)
	var out struct {
		Price Money `bson:"price"`
	}
	assert.Error(t, bson.Unmarshal(raw, &out))
}
