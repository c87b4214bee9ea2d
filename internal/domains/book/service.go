package book

import (
	"context"

	"github.com/google/uuid"
)

type Service interface {
	Create(ctx context.Context, req CreateBookRequest) (*BookResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*BookResponse, error)
	List(ctx context.Context) ([]BookResponse, error)
	Search(ctx context.Context, field SearchField, query string, page, size int) (*SearchResult, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateBookRequest) (*BookResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
