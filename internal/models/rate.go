package models

import "time"

// Rate is a point-in-time snapshot of a currency's USD price.
type Rate struct {
	ID        string    `json:"id"`
	Currency  string    `json:"currency"`
	USDPrice  float64   `json:"usd_price"`
	FetchedAt time.Time `json:"fetched_at"`
}
