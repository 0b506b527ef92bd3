package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		debitAmount decimal.Decimal
		expectError bool
	}{
		{
			name:        "debit more than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(150),
			expectError: true,
		},
		{
			name:        "debit exact balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(100),
			expectError: false,
		},
		{
			name:        "debit less than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(50),
			expectError: false,
		},
		{
			name:        "debit from zero balance",
			balance:     decimal.Zero,
			debitAmount: decimal.NewFromInt(1),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance}

			err := acc.ValidateDebit(tt.debitAmount)

			if tt.expectError && !errors.Is(err, ErrInsufficientFunds) {
				t.Errorf("expected ErrInsufficientFunds, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccount_ApplyDebitCredit(t *testing.T) {
	acc := &Account{Balance: decimal.NewFromInt(100)}
	amount := decimal.NewFromInt(30)

	if got := acc.ApplyDebit(amount); !got.Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected 70 after debit, got %s", got)
	}

	if got := acc.ApplyCredit(amount); !got.Equal(decimal.NewFromInt(130)) {
		t.Errorf("expected 130 after credit, got %s", got)
	}

	// Applying never mutates the account itself.
	if !acc.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance unchanged at 100, got %s", acc.Balance)
	}
}
