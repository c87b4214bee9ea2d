package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/book"
	"library-backend/pkg/cache"
	"library-backend/pkg/logger"
)

const (
	uniqueViolation = "23505"
	cacheTTL        = 5 * time.Minute
)

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, c cache.Cache) book.Repository {
	return &postgresRepository{pool: pool, cache: c}
}

func bookCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("book:%s", id)
}

func (r *postgresRepository) Create(ctx context.Context, b *book.Book) error {
	query := `
		INSERT INTO books (id, title, author, isbn, publication_date, genre, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		b.ID, b.Title, b.Author, b.ISBN, b.PublicationDate, b.Genre, b.Available,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return book.ErrISBNAlreadyExists
		}
		return fmt.Errorf("create book: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*book.Book, error) {
	var cached book.Book
	if err := r.cache.Get(ctx, bookCacheKey(id), &cached); err == nil {
		return &cached, nil
	}

	query := `
		SELECT id, title, author, isbn, publication_date, genre, available, created_at, updated_at
		FROM books WHERE id = $1`

	b, err := r.scanOne(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w with id: %s", book.ErrBookNotFound, id)
		}
		return nil, fmt.Errorf("get book by id: %w", err)
	}

	if err := r.cache.Set(ctx, bookCacheKey(id), b, cacheTTL); err != nil {
		logger.Warn("failed to cache book", map[string]interface{}{"book_id": id.String()})
	}

	return b, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]*book.Book, error) {
	query := `
		SELECT id, title, author, isbn, publication_date, genre, available, created_at, updated_at
		FROM books ORDER BY title`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *postgresRepository) Search(ctx context.Context, field book.SearchField, query string, page, size int) ([]*book.Book, int64, error) {
	column, ok := searchColumns[field]
	if !ok {
		return nil, 0, fmt.Errorf("unsupported search field: %s", field)
	}

	pattern := "%" + query + "%"
	offset := (page - 1) * size

	var total int64
	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM books WHERE %s ILIKE $1`, column)
	if err := r.pool.QueryRow(ctx, countSQL, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	listSQL := fmt.Sprintf(`
		SELECT id, title, author, isbn, publication_date, genre, available, created_at, updated_at
		FROM books WHERE %s ILIKE $1
		ORDER BY title
		LIMIT $2 OFFSET $3`, column)

	rows, err := r.pool.Query(ctx, listSQL, pattern, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	books, err := r.scanAll(rows)
	if err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

// searchColumns whitelists the queryable columns so the field name
// never reaches the SQL string unchecked.
var searchColumns = map[book.SearchField]string{
	book.SearchByTitle:  "title",
	book.SearchByAuthor: "author",
	book.SearchByISBN:   "isbn",
	book.SearchByGenre:  "genre",
}

func (r *postgresRepository) Update(ctx context.Context, b *book.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, isbn = $4, publication_date = $5, genre = $6, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, b.ID, b.Title, b.Author, b.ISBN, b.PublicationDate, b.Genre)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return book.ErrISBNAlreadyExists
		}
		return fmt.Errorf("update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w with id: %s", book.ErrBookNotFound, b.ID)
	}

	_ = r.cache.Delete(ctx, bookCacheKey(b.ID))
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w with id: %s", book.ErrBookNotFound, id)
	}

	_ = r.cache.Delete(ctx, bookCacheKey(id))
	return nil
}

func (r *postgresRepository) MarkUnavailableTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE books SET available = false, updated_at = NOW() WHERE id = $1 AND available = true`, id)
	if err != nil {
		return false, fmt.Errorf("mark book unavailable: %w", err)
	}

	_ = r.cache.Delete(ctx, bookCacheKey(id))
	return tag.RowsAffected() == 1, nil
}

func (r *postgresRepository) MarkAvailableTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`UPDATE books SET available = true, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark book available: %w", err)
	}

	_ = r.cache.Delete(ctx, bookCacheKey(id))
	return nil
}

func (r *postgresRepository) scanOne(row pgx.Row) (*book.Book, error) {
	var b book.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.PublicationDate,
		&b.Genre, &b.Available, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepository) scanAll(rows pgx.Rows) ([]*book.Book, error) {
	var books []*book.Book
	for rows.Next() {
		b, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
