package matcher

import (
	"math"

	"github.com/tonpad/deposit-backend/internal/models"
)

// NanoPerTon is the TON base-unit scale (9 decimals).
const NanoPerTon = 1e9

// ToNano converts a display-unit TON amount to nanotons, rounding to the
// nearest integer so that decimal inputs like 2.5 or 0.001 survive their
// float64 representation intact.
func ToNano(amount float64) int64 {
	return int64(math.Round(amount * NanoPerTon))
}

// Match scans transfers in the order given and returns the first one whose
// sender equals expectedSender exactly (no normalization) and whose value
// equals expectedNano exactly. The boolean reports whether a match was found.
//
// Sender plus amount is the only correlation key the ledger offers: it cannot
// tell apart two simultaneous deposits with the same sender and amount.
func Match(expectedSender string, expectedNano int64, transfers []models.Transfer) (models.Transfer, bool) {
	for _, tr := range transfers {
		if tr.Sender == expectedSender && tr.ValueNano == expectedNano {
			return tr, true
		}
	}
	return models.Transfer{}, false
}
