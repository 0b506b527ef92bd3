package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solarbank/transferd/internal/domain"
)

// TransferUseCase coordinates a transfer as one atomic unit: debit the
// sender, credit the receiver, append the ledger record, commit.
type TransferUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	transferRepo TransferRepository
	idGen        IDGenerator
	retrier      Retrier
	timeout      time.Duration
}

// NewTransferUseCase creates a new TransferUseCase. timeout bounds a single
// transfer attempt, including lock waits on contended accounts.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	idGen IDGenerator,
	retrier Retrier,
	timeout time.Duration,
) *TransferUseCase {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &TransferUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		idGen:        idGen,
		retrier:      retrier,
		timeout:      timeout,
	}
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	SenderID   string
	ReceiverID string
	Amount     decimal.Decimal
}

// CreateTransfer moves Amount from the sender to the receiver. Validation
// failures are returned before any mutation; mid-transaction failures roll
// the whole unit back. Deadlocks and serialization conflicts are retried.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*domain.Transfer, error) {
	// Validate before starting a transaction
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.SenderID == input.ReceiverID {
		return nil, domain.ErrSameAccount
	}

	var transfer *domain.Transfer

	err := uc.retrier.Retry(ctx, func() error {
		t, err := uc.execute(ctx, input)
		if err != nil {
			return err
		}

		transfer = t

		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrTimeout
		}

		return nil, err
	}

	return transfer, nil
}

func (uc *TransferUseCase) execute(ctx context.Context, input CreateTransferInput) (*domain.Transfer, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock both accounts in ascending id order so opposite-direction
	// transfers never wait on each other in reverse order.
	ids := []string{input.SenderID, input.ReceiverID}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	sender, receiver, err := pickParticipants(accounts, input.SenderID, input.ReceiverID)
	if err != nil {
		return nil, err
	}

	if err := sender.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if err := uc.accountRepo.UpdateBalance(ctx, tx, sender.ID, sender.ApplyDebit(input.Amount), now); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, receiver.ID, receiver.ApplyCredit(input.Amount), now); err != nil {
		return nil, err
	}

	transfer := &domain.Transfer{
		ID:         uc.idGen.Generate(),
		SenderID:   input.SenderID,
		ReceiverID: input.ReceiverID,
		Amount:     input.Amount,
	}

	// CreatedAt is assigned by the store at insert.
	if err := uc.transferRepo.Create(ctx, tx, transfer); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return transfer, nil
}

// pickParticipants resolves sender and receiver from the locked rows and
// names the missing account when one was not found.
func pickParticipants(accounts []*domain.Account, senderID, receiverID string) (sender, receiver *domain.Account, err error) {
	for _, a := range accounts {
		switch a.ID {
		case senderID:
			sender = a
		case receiverID:
			receiver = a
		}
	}

	if sender == nil {
		return nil, nil, fmt.Errorf("%w: sender %s", domain.ErrAccountNotFound, senderID)
	}

	if receiver == nil {
		return nil, nil, fmt.Errorf("%w: receiver %s", domain.ErrAccountNotFound, receiverID)
	}

	return sender, receiver, nil
}

// GetTransfer retrieves a transfer by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// ListTransfersInput represents input for listing transfers.
type ListTransfersInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListTransfers lists ledger records in creation order. When AccountID is
// set, only transfers the account participated in are returned.
func (uc *TransferUseCase) ListTransfers(ctx context.Context, input ListTransfersInput) ([]*domain.Transfer, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	if input.AccountID != "" {
		return uc.transferRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
	}

	return uc.transferRepo.List(ctx, input.Limit, input.Offset)
}
