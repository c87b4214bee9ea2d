package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/book"
	"library-backend/pkg/logger"
)

type bookService struct {
	repo book.Repository
}

func NewBookService(repo book.Repository) book.Service {
	return &bookService{repo: repo}
}

func (s *bookService) Create(ctx context.Context, req book.CreateBookRequest) (*book.BookResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pubDate, err := time.Parse("2006-01-02", req.PublicationDate)
	if err != nil {
		return nil, err
	}

	b := &book.Book{
		ID:              uuid.New(),
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationDate: pubDate,
		Genre:           req.Genre,
		Available:       true,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	logger.Info("book created", map[string]interface{}{
		"book_id": b.ID.String(),
		"isbn":    b.ISBN,
	})

	resp := book.ToBookResponse(b)
	return &resp, nil
}

func (s *bookService) GetByID(ctx context.Context, id uuid.UUID) (*book.BookResponse, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := book.ToBookResponse(b)
	return &resp, nil
}

func (s *bookService) List(ctx context.Context) ([]book.BookResponse, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]book.BookResponse, 0, len(books))
	for _, b := range books {
		responses = append(responses, book.ToBookResponse(b))
	}

	return responses, nil
}

func (s *bookService) Search(ctx context.Context, field book.SearchField, query string, page, size int) (*book.SearchResult, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	books, total, err := s.repo.Search(ctx, field, query, page, size)
	if err != nil {
		return nil, err
	}

	responses := make([]book.BookResponse, 0, len(books))
	for _, b := range books {
		responses = append(responses, book.ToBookResponse(b))
	}

	return &book.SearchResult{
		Books:      responses,
		Page:       page,
		Size:       size,
		TotalItems: total,
	}, nil
}

func (s *bookService) Update(ctx context.Context, id uuid.UUID, req book.UpdateBookRequest) (*book.BookResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pubDate, err := time.Parse("2006-01-02", req.PublicationDate)
	if err != nil {
		return nil, err
	}

	b.Title = req.Title
	b.Author = req.Author
	b.ISBN = req.ISBN
	b.PublicationDate = pubDate
	b.Genre = req.Genre

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	resp := book.ToBookResponse(b)
	return &resp, nil
}

func (s *bookService) Delete(ctx context.Context, id uuid.UUID) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// sách đang cho mượn thì không xoá
	if !b.Available {
		return book.ErrBookOnLoan
	}

	return s.repo.Delete(ctx, id)
}
