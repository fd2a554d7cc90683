package models

import "time"

// Student is keyed by the canonical (uppercase) PID.
type Student struct {
	PID       string    `bson:"_id" json:"pid"`
	Blocked   bool      `bson:"blocked" json:"blocked"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CartSnapshot is the persisted cart of one student: item id to quantity.
type CartSnapshot struct {
	PID       string         `bson:"_id" json:"pid"`
	Items     map[string]int `bson:"items" json:"items"`
	UpdatedAt time.Time      `bson:"updatedAt" json:"updatedAt"`
}
