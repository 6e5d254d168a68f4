package models

import "time"

type IntentStatus string

const (
	IntentPending IntentStatus = "pending"
	IntentSuccess IntentStatus = "success"
)

// DepositIntent is a client-declared deposit waiting to be observed on chain.
// ID is supplied by the client and acts as the idempotency key for the whole
// operation; UserID, WalletAddress and AmountNano are the matching keys and
// never change after creation.
type DepositIntent struct {
	ID            string       `json:"intent_id"`
	UserID        string       `json:"user_id"`
	WalletAddress string       `json:"wallet_address"`
	AmountNano    int64        `json:"amount_nano"`
	Status        IntentStatus `json:"status"`
	TxHash        *string      `json:"tx_hash,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
