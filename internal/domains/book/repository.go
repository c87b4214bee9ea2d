package book

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SearchField selects which column a paged search matches against.
type SearchField string

const (
	SearchByTitle  SearchField = "title"
	SearchByAuthor SearchField = "author"
	SearchByISBN   SearchField = "isbn"
	SearchByGenre  SearchField = "genre"
)

type Repository interface {
	Create(ctx context.Context, b *Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	List(ctx context.Context) ([]*Book, error)
	Search(ctx context.Context, field SearchField, query string, page, size int) ([]*Book, int64, error)
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id uuid.UUID) error

	// MarkUnavailableTx flips available from true to false inside tx.
	// Returns false without error when the book was already unavailable,
	// so concurrent borrowers lose the race cleanly.
	MarkUnavailableTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	// MarkAvailableTx flips the book back to available inside tx.
	MarkAvailableTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}
