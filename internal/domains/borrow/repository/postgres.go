package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/borrow"
)

const detailedColumns = `
	br.id, br.user_id, br.book_id, br.borrow_date, br.due_date,
	br.return_date, br.returned, br.created_at, br.updated_at,
	u.name, b.title`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) borrow.Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) CreateTx(ctx context.Context, tx pgx.Tx, record *borrow.BorrowRecord) error {
	query := `
		INSERT INTO borrow_records (id, user_id, book_id, borrow_date, due_date, returned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := tx.QueryRow(ctx, query,
		record.ID, record.UserID, record.BookID, record.BorrowDate, record.DueDate,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create borrow record: %w", err)
	}

	return nil
}

func (r *postgresRepository) MarkReturnedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, returnDate time.Time) (bool, error) {
	query := `
		UPDATE borrow_records
		SET returned = true, return_date = $2, updated_at = NOW()
		WHERE id = $1 AND returned = false`

	tag, err := tx.Exec(ctx, query, id, returnDate)
	if err != nil {
		return false, fmt.Errorf("mark record returned: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*borrow.BorrowRecord, error) {
	query := `
		SELECT id, user_id, book_id, borrow_date, due_date, return_date, returned, created_at, updated_at
		FROM borrow_records WHERE id = $1`

	var rec borrow.BorrowRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.UserID, &rec.BookID, &rec.BorrowDate, &rec.DueDate,
		&rec.ReturnDate, &rec.Returned, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w with id: %s", borrow.ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("get borrow record: %w", err)
	}

	return &rec, nil
}

func (r *postgresRepository) GetDetailedByID(ctx context.Context, id uuid.UUID) (*borrow.DetailedRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM borrow_records br
		JOIN users u ON u.id = br.user_id
		JOIN books b ON b.id = br.book_id
		WHERE br.id = $1`, detailedColumns)

	rec, err := r.scanDetailed(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w with id: %s", borrow.ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("get detailed record: %w", err)
	}

	return rec, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]*borrow.DetailedRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM borrow_records br
		JOIN users u ON u.id = br.user_id
		JOIN books b ON b.id = br.book_id
		ORDER BY br.borrow_date DESC`, detailedColumns)

	return r.queryDetailed(ctx, query)
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*borrow.DetailedRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM borrow_records br
		JOIN users u ON u.id = br.user_id
		JOIN books b ON b.id = br.book_id
		WHERE br.user_id = $1
		ORDER BY br.borrow_date DESC`, detailedColumns)

	return r.queryDetailed(ctx, query, userID)
}

func (r *postgresRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*borrow.DetailedRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM borrow_records br
		JOIN users u ON u.id = br.user_id
		JOIN books b ON b.id = br.book_id
		WHERE br.returned = false AND br.due_date < $1
		ORDER BY br.due_date`, detailedColumns)

	return r.queryDetailed(ctx, query, asOf)
}

func (r *postgresRepository) CountUnreturnedByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM borrow_records WHERE user_id = $1 AND returned = false`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unreturned records: %w", err)
	}

	return count, nil
}

func (r *postgresRepository) HasOverdueByUser(ctx context.Context, userID uuid.UUID, asOf time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM borrow_records
			WHERE user_id = $1 AND returned = false AND due_date < $2
		)`,
		userID, asOf,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check overdue records: %w", err)
	}

	return exists, nil
}

func (r *postgresRepository) queryDetailed(ctx context.Context, query string, args ...interface{}) ([]*borrow.DetailedRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list borrow records: %w", err)
	}
	defer rows.Close()

	var records []*borrow.DetailedRecord
	for rows.Next() {
		rec, err := r.scanDetailed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan borrow record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *postgresRepository) scanDetailed(row pgx.Row) (*borrow.DetailedRecord, error) {
	var rec borrow.DetailedRecord
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.BookID, &rec.BorrowDate, &rec.DueDate,
		&rec.ReturnDate, &rec.Returned, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.UserName, &rec.BookTitle,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
