package borrow

import (
	"context"

	"github.com/google/uuid"
)

type Service interface {
	// BorrowBook runs the full eligibility check and creates the record
	// atomically with the availability flip.
	BorrowBook(ctx context.Context, req CreateBorrowRequest) (*BorrowRecordResponse, error)
	// ReturnBook marks the record returned and makes the book available again.
	ReturnBook(ctx context.Context, recordID uuid.UUID) (*BorrowRecordResponse, error)

	List(ctx context.Context) ([]BorrowRecordResponse, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]BorrowRecordResponse, error)
	ListByUserEmail(ctx context.Context, email string) ([]BorrowRecordResponse, error)
	ListOverdue(ctx context.Context) ([]BorrowRecordResponse, error)
	// OverdueReport renders the plain-text report and writes it to disk.
	OverdueReport(ctx context.Context) (string, error)
}
