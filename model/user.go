package model

import "time"

type User struct {
	UserID           string    `bson:"user_id" json:"user_id"`
	FirstName        string    `bson:"firstname" json:"firstname"`
	LastName         string    `bson:"lastname" json:"lastname"`
	Email            string    `bson:"email" json:"email"` // stored lowercase, unique index
	Password         string    `bson:"password" json:"-"`  // argon2id hash, never the raw value
	ContactNumber    string    `bson:"contact_number" json:"contact_number"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	Notes            []string  `bson:"notes" json:"notes"` // owned note ids
	TwoFactorSecret  string    `bson:"two_factor_secret,omitempty" json:"-"`
	TwoFactorEnabled bool      `bson:"two_factor_enabled" json:"two_factor_enabled"`
}
