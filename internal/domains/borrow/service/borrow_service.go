package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"library-backend/internal/domains/book"
	"library-backend/internal/domains/borrow"
	"library-backend/internal/domains/user"
	"library-backend/pkg/broadcast"
	"library-backend/pkg/database"
	"library-backend/pkg/logger"
)

// maxBorrowLimit is the number of books a patron may hold at once.
const maxBorrowLimit = 5

const dateLayout = "2006-01-02"

type borrowService struct {
	records    borrow.Repository
	books      book.Repository
	users      user.Repository
	tx         database.TxRunner
	hub        *broadcast.Hub[book.AvailabilityEvent]
	reportPath string
	now        func() time.Time
}

func NewBorrowService(
	records borrow.Repository,
	books book.Repository,
	users user.Repository,
	tx database.TxRunner,
	hub *broadcast.Hub[book.AvailabilityEvent],
	reportPath string,
) borrow.Service {
	return &borrowService{
		records:    records,
		books:      books,
		users:      users,
		tx:         tx,
		hub:        hub,
		reportPath: reportPath,
		now:        time.Now,
	}
}

func (s *borrowService) BorrowBook(ctx context.Context, req borrow.CreateBorrowRequest) (*borrow.BorrowRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userID := uuid.MustParse(req.UserID)
	bookID := uuid.MustParse(req.BookID)
	borrowDate, _ := time.Parse(dateLayout, req.BorrowDate)
	dueDate, _ := time.Parse(dateLayout, req.DueDate)

	// thứ tự kiểm tra cố định: sách tồn tại, sách còn, user tồn tại,
	// chưa chạm limit, không có sách quá hạn
	b, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !b.Available {
		return nil, book.ErrBookUnavailable
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.records.CountUnreturnedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= maxBorrowLimit {
		return nil, borrow.ErrBorrowLimitReached
	}

	hasOverdue, err := s.records.HasOverdueByUser(ctx, userID, s.today())
	if err != nil {
		return nil, err
	}
	if hasOverdue {
		return nil, borrow.ErrHasOverdueBooks
	}

	record := &borrow.BorrowRecord{
		ID:         uuid.New(),
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
	}

	err = s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		flipped, err := s.books.MarkUnavailableTx(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if !flipped {
			// một request khác vừa mượn trước; không insert gì cả
			return book.ErrBookUnavailable
		}
		return s.records.CreateTx(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	// publish chỉ sau khi commit thành công
	s.hub.Publish(book.AvailabilityEvent{BookID: bookID.String(), Available: false})

	logger.Info("book borrowed", map[string]interface{}{
		"record_id": record.ID.String(),
		"book_id":   bookID.String(),
		"user_id":   userID.String(),
	})

	resp := borrow.ToRecordResponse(&borrow.DetailedRecord{
		BorrowRecord: *record,
		UserName:     u.Name,
		BookTitle:    b.Title,
	})
	return &resp, nil
}

func (s *borrowService) ReturnBook(ctx context.Context, recordID uuid.UUID) (*borrow.BorrowRecordResponse, error) {
	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.Returned {
		return nil, borrow.ErrAlreadyReturned
	}

	returnDate := s.today()

	err = s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		updated, err := s.records.MarkReturnedTx(ctx, tx, recordID, returnDate)
		if err != nil {
			return err
		}
		if !updated {
			return borrow.ErrAlreadyReturned
		}
		return s.books.MarkAvailableTx(ctx, tx, record.BookID)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(book.AvailabilityEvent{BookID: record.BookID.String(), Available: true})

	logger.Info("book returned", map[string]interface{}{
		"record_id": recordID.String(),
		"book_id":   record.BookID.String(),
	})

	detailed, err := s.records.GetDetailedByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	resp := borrow.ToRecordResponse(detailed)
	return &resp, nil
}

func (s *borrowService) List(ctx context.Context) ([]borrow.BorrowRecordResponse, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(records), nil
}

func (s *borrowService) ListByUser(ctx context.Context, userID uuid.UUID) ([]borrow.BorrowRecordResponse, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(records), nil
}

func (s *borrowService) ListByUserEmail(ctx context.Context, email string) ([]borrow.BorrowRecordResponse, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	records, err := s.records.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return toResponses(records), nil
}

func (s *borrowService) ListOverdue(ctx context.Context) ([]borrow.BorrowRecordResponse, error) {
	records, err := s.records.ListOverdue(ctx, s.today())
	if err != nil {
		return nil, err
	}
	return toResponses(records), nil
}

func (s *borrowService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func toResponses(records []*borrow.DetailedRecord) []borrow.BorrowRecordResponse {
	responses := make([]borrow.BorrowRecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, borrow.ToRecordResponse(rec))
	}
	return responses
}
