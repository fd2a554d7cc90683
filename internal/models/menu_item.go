package models

import "time"

// MenuItem is an orderable catalog entry. Orders copy name and price at
// checkout, so edits here never change placed orders.
type MenuItem struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Price     Money     `bson:"price" json:"price"`
	ImageURL  string    `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Available bool      `bson:"available" json:"available"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
