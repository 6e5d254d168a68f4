package models

import "time"

// Balance is one user's holdings in a single currency, kept in the
// currency's smallest unit (nanotons for TON).
type Balance struct {
	UserID        string    `json:"user_id"`
	Currency      string    `json:"currency"`
	AmountNano    int64     `json:"amount_nano"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}
