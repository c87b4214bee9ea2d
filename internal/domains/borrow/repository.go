package borrow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Repository interface {
	// CreateTx inserts the record inside an open transaction, so the
	// insert and the availability flip commit or roll back together.
	CreateTx(ctx context.Context, tx pgx.Tx, record *BorrowRecord) error
	// MarkReturnedTx flips returned to true guarded by returned = false.
	// Returns false without error when the record was already returned.
	MarkReturnedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, returnDate time.Time) (bool, error)

	GetByID(ctx context.Context, id uuid.UUID) (*BorrowRecord, error)
	GetDetailedByID(ctx context.Context, id uuid.UUID) (*DetailedRecord, error)
	List(ctx context.Context) ([]*DetailedRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*DetailedRecord, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*DetailedRecord, error)
	CountUnreturnedByUser(ctx context.Context, userID uuid.UUID) (int, error)
	HasOverdueByUser(ctx context.Context, userID uuid.UUID, asOf time.Time) (bool, error)
}
