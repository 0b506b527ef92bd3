package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is an immutable ledger record of a completed balance movement.
// CreatedAt is assigned by the store at commit time.
type Transfer struct {
	ID         string
	SenderID   string
	ReceiverID string
	Amount     decimal.Decimal
	CreatedAt  time.Time
}

// Validate validates a transfer request before any mutation.
func (t *Transfer) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if t.SenderID == t.ReceiverID {
		return ErrSameAccount
	}

	return nil
}
