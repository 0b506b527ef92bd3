package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/solarbank/transferd/internal/domain"
	"github.com/solarbank/transferd/internal/usecase"
)

// Balances and amounts travel as decimal strings on the wire so clients
// never round-trip money through floats.

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() (usecase.CreateAccountInput, error) {
	balance, err := parseBalance(r.Balance)
	if err != nil {
		return usecase.CreateAccountInput{}, err
	}

	return usecase.CreateAccountInput{
		Name:    r.Name,
		Balance: balance,
	}, nil
}

// UpdateAccountRequest represents a request to replace an account's mutable
// fields.
type UpdateAccountRequest struct {
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateAccountRequest) ToUseCaseInput(id string) (usecase.UpdateAccountInput, error) {
	balance, err := parseBalance(r.Balance)
	if err != nil {
		return usecase.UpdateAccountInput{}, err
	}

	return usecase.UpdateAccountInput{
		ID:      id,
		Name:    r.Name,
		Balance: balance,
	}, nil
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Amount     string `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() (usecase.CreateTransferInput, error) {
	if r.Amount == "" {
		return usecase.CreateTransferInput{}, domain.ErrInvalidAmount
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return usecase.CreateTransferInput{}, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, r.Amount)
	}

	return usecase.CreateTransferInput{
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Amount:     amount,
	}, nil
}

func parseBalance(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}

	balance, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", domain.ErrInvalidBalance, s)
	}

	return balance, nil
}
