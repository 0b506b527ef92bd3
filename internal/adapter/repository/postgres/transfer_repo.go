package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solarbank/transferd/internal/domain"
	"github.com/solarbank/transferd/internal/infrastructure/postgres/generated"
	"github.com/solarbank/transferd/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository. The transfers
// table is append-only: there are no update or delete paths.
type TransferRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create inserts a transfer within tx. The database assigns created_at at
// insert, so the committed timestamp is the store's, not the caller's.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.CreateTransfer(ctx, generated.CreateTransferParams{
		ID:         transfer.ID,
		SenderID:   transfer.SenderID,
		ReceiverID: transfer.ReceiverID,
		Amount:     decimalToNumeric(transfer.Amount),
	})
	if err != nil {
		return err
	}

	transfer.CreatedAt = row.CreatedAt.Time

	return nil
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	row, err := r.queries.GetTransferByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTransferNotFound, id)
		}

		return nil, err
	}

	return rowToTransfer(row), nil
}

// List lists ledger records in creation order.
func (r *TransferRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transfer, error) {
	rows, err := r.queries.ListTransfers(ctx, generated.ListTransfersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransfers(rows), nil
}

// ListByAccount lists transfers the account participated in, as sender or
// receiver, in creation order.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	rows, err := r.queries.ListTransfersByAccount(ctx, generated.ListTransfersByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransfers(rows), nil
}

func rowsToTransfers(rows []generated.Transfer) []*domain.Transfer {
	transfers := make([]*domain.Transfer, 0, len(rows))
	for _, row := range rows {
		transfers = append(transfers, rowToTransfer(row))
	}

	return transfers
}

func rowToTransfer(row generated.Transfer) *domain.Transfer {
	return &domain.Transfer{
		ID:         row.ID,
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Amount:     numericToDecimal(row.Amount),
		CreatedAt:  row.CreatedAt.Time,
	}
}
