package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountInUse    = errors.New("account is referenced by transfers")

	// Transfer errors
	ErrSameAccount       = errors.New("cannot transfer to same account")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTransferNotFound  = errors.New("transfer not found")

	// ErrTimeout is returned when a transfer could not acquire its account
	// locks within the configured bound. The caller may retry.
	ErrTimeout = errors.New("transfer timed out waiting for account locks")
)
