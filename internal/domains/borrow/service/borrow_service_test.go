package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/book"
	"library-backend/internal/domains/borrow"
	"library-backend/internal/domains/user"
	"library-backend/pkg/broadcast"
)

// ==================== mocks ====================

type mockBorrowRepo struct{ mock.Mock }

func (m *mockBorrowRepo) CreateTx(ctx context.Context, tx pgx.Tx, record *borrow.BorrowRecord) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *mockBorrowRepo) MarkReturnedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, returnDate time.Time) (bool, error) {
	args := m.Called(ctx, tx, id, returnDate)
	return args.Bool(0), args.Error(1)
}

func (m *mockBorrowRepo) GetByID(ctx context.Context, id uuid.UUID) (*borrow.BorrowRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*borrow.BorrowRecord), args.Error(1)
}

func (m *mockBorrowRepo) GetDetailedByID(ctx context.Context, id uuid.UUID) (*borrow.DetailedRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*borrow.DetailedRecord), args.Error(1)
}

func (m *mockBorrowRepo) List(ctx context.Context) ([]*borrow.DetailedRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*borrow.DetailedRecord), args.Error(1)
}

func (m *mockBorrowRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*borrow.DetailedRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*borrow.DetailedRecord), args.Error(1)
}

func (m *mockBorrowRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]*borrow.DetailedRecord, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*borrow.DetailedRecord), args.Error(1)
}

func (m *mockBorrowRepo) CountUnreturnedByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockBorrowRepo) HasOverdueByUser(ctx context.Context, userID uuid.UUID, asOf time.Time) (bool, error) {
	args := m.Called(ctx, userID, asOf)
	return args.Bool(0), args.Error(1)
}

type mockBookRepo struct{ mock.Mock }

func (m *mockBookRepo) Create(ctx context.Context, b *book.Book) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBookRepo) GetByID(ctx context.Context, id uuid.UUID) (*book.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*book.Book), args.Error(1)
}

func (m *mockBookRepo) List(ctx context.Context) ([]*book.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*book.Book), args.Error(1)
}

func (m *mockBookRepo) Search(ctx context.Context, field book.SearchField, query string, page, size int) ([]*book.Book, int64, error) {
	args := m.Called(ctx, field, query, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*book.Book), args.Get(1).(int64), args.Error(2)
}

func (m *mockBookRepo) Update(ctx context.Context, b *book.Book) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBookRepo) MarkUnavailableTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookRepo) MarkAvailableTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	return m.Called(ctx, tx, id).Error(0)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// fakeTxRunner chạy fn trực tiếp, không cần database thật.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

// ==================== fixtures ====================

type fixture struct {
	records *mockBorrowRepo
	books   *mockBookRepo
	users   *mockUserRepo
	hub     *broadcast.Hub[book.AvailabilityEvent]
	service *borrowService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		records: new(mockBorrowRepo),
		books:   new(mockBookRepo),
		users:   new(mockUserRepo),
		hub:     broadcast.NewHub[book.AvailabilityEvent](),
	}
	t.Cleanup(f.hub.Close)

	svc := NewBorrowService(f.records, f.books, f.users, fakeTxRunner{}, f.hub,
		filepath.Join(t.TempDir(), "overdue_report.txt"))
	f.service = svc.(*borrowService)
	return f
}

func validBorrowRequest(userID, bookID uuid.UUID) borrow.CreateBorrowRequest {
	now := time.Now()
	return borrow.CreateBorrowRequest{
		UserID:     userID.String(),
		BookID:     bookID.String(),
		BorrowDate: now.Format(dateLayout),
		DueDate:    now.AddDate(0, 0, 14).Format(dateLayout),
	}
}

func availableBook(id uuid.UUID) *book.Book {
	return &book.Book{ID: id, Title: "The Go Programming Language", ISBN: "9780134190440", Available: true}
}

func patron(id uuid.UUID) *user.User {
	return &user.User{ID: id, Name: "Alice Nguyen", Email: "alice@example.com", Role: "PATRON"}
}

func collectEvents(ch <-chan book.AvailabilityEvent) []book.AvailabilityEvent {
	var events []book.AvailabilityEvent
	for {
		select {
		case ev := <-ch:
			events = append(events, ev)
		case <-time.After(50 * time.Millisecond):
			return events
		}
	}
}

// ==================== BorrowBook ====================

func TestBorrowBook_Success(t *testing.T) {
	f := newFixture(t)
	userID, bookID := uuid.New(), uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := f.hub.Subscribe(ctx)

	f.books.On("GetByID", mock.Anything, bookID).Return(availableBook(bookID), nil)
	f.users.On("GetByID", mock.Anything, userID).Return(patron(userID), nil)
	f.records.On("CountUnreturnedByUser", mock.Anything, userID).Return(2, nil)
	f.records.On("HasOverdueByUser", mock.Anything, userID, mock.Anything).Return(false, nil)
	f.books.On("MarkUnavailableTx", mock.Anything, mock.Anything, bookID).Return(true, nil)
	f.records.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.BorrowBook(context.Background(), validBorrowRequest(userID, bookID))

	require.NoError(t, err)
	assert.Equal(t, userID, resp.UserID)
	assert.Equal(t, "Alice Nguyen", resp.UserName)
	assert.Equal(t, "The Go Programming Language", resp.BookTitle)
	assert.False(t, resp.Returned)

	got := collectEvents(events)
	require.Len(t, got, 1)
	assert.Equal(t, bookID.String(), got[0].BookID)
	assert.False(t, got[0].Available)

	f.records.AssertExpectations(t)
	f.books.AssertExpectations(t)
}

func TestBorrowBook_BookNotFound(t *testing.T) {
	f := newFixture(t)
	userID, bookID := uuid.New(), uuid.New()

	f.books.On("GetByID", mock.Anything, bookID).Return(nil, book.ErrBookNotFound)

	_, err := f.service.BorrowBook(context.Background(), validBorrowRequest(userID, bookID))

	assert.ErrorIs(t, err, book.ErrBookNotFound)
	f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestBorrowBook_BookUnavailable(t *testing.T) {
	f := newFixture(t)
	userID, bookID := uuid.New(), uuid.New()

	b := availableBook(bookID)
	b.Available = false
	f.books.On("GetByID", mock.Anything, bookID).Return(b, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := f.hub.Subscribe(ctx)

	_, err := f.service.BorrowBook(context.Background(), validBorrowRequest(userID, bookID))

	assert.ErrorIs(t, err, book.ErrBookUnavailable)
	assert.Empty(t, collectEvents(events), "no event on failed borrow")
	f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestBorrowBook_UserNotFound(t *testing.T) {
	f := newFixture(t)
	userID, bookID := uuid.New(), uuid.New()

	f.books.On("GetByID", mock.Anything, bookID).Return(availableBook(bookID), nil)
	f.users.On("GetByID", mock.Anything, userID).Return(nil, user.ErrUserNotFound)

	_, err := f.service.BorrowBook(context.Background(), validBorrowRequest(userID, bookID))

	assert.ErrorIs(t, err, user.ErrUserNotFound)
	f.records.AssertNotCalled(t, "CountUnreturnedByUser", mock.Anything, mock.Anything)
}

func TestBorrowBook_LimitBoundary(t *testing.T) {
	cases := []struct {
		name    string
		current int
		wantErr error
	}{
		{"four active loans is allowed", 4, nil},
		{"five active loans hits the limit", 5, borrow.ErrBorrowLimitReached},
		{"six active loans hits the limit", 6, borrow.ErrBorrowLimitReached},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			userID, bookID := uuid.New(), uuid.New()

			f.books.On("GetByID", mock.Anything, bookID).Return(availableBook(bookID), nil)
			f.users.On("GetByID", mock.Anything, userID).Return(patron(userID), nil)
			f.records.On("CountUnreturnedByUser", mock.Anything, userID).Return(tc.current, nil)
			if tc.wantErr == nil {
				f.records.On("HasOverdueByUser", mock.Anything, userID, mock.Anything).Return(false, nil)
				f.books.On("MarkUnavailableTx", mock.Anything, mock.Anything, bookID).Return(true, nil)
				f.records.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			}

			_, err := f.service.BorrowBook(context.Background(), validBorrowRequest(userID, bookID))

			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
				f.records.AssertNotCalled(t, "HasOverdueByUser", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestBorrowBook_BlockedByOverdue(t *testing.T) {
	f := newFixture(t)
	userID, bookID := uuid.New(), uuid.New()

	f.books.On("GetByID", mock.Anything, bookID).Return(availableBook(bookID), nil)
	f.users.On("GetByID", mock.Anything, userID).Return(patron(userID), nil)
	f.records.On("CountUnreturnedByUser", mock.Anything, userID).Return(1, nil)
	f.records.On("HasOverdueByUser", mock.Anything, userID, mock.Anything).Return(true, nil)

	_, err := f.service.BorrowBook(context.Background(), validBorrowRequest(userID, bookID))

	assert.ErrorIs(t, err, borrow.ErrHasOverdueBooks)
	f.records.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestBorrowBook_LosesAvailabilityRace(t *testing.T) {
	f := newFixture(t)
	userID, bookID := uuid.New(), uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := f.hub.Subscribe(ctx)

	f.books.On("GetByID", mock.Anything, bookID).Return(availableBook(bookID), nil)
	f.users.On("GetByID", mock.Anything, userID).Return(patron(userID), nil)
	f.records.On("CountUnreturnedByUser", mock.Anything, userID).Return(0, nil)
	f.records.On("HasOverdueByUser", mock.Anything, userID, mock.Anything).Return(false, nil)
	// CAS trả về false: request khác đã mượn trước
	f.books.On("MarkUnavailableTx", mock.Anything, mock.Anything, bookID).Return(false, nil)

	_, err := f.service.BorrowBook(context.Background(), validBorrowRequest(userID, bookID))

	assert.ErrorIs(t, err, book.ErrBookUnavailable)
	assert.Empty(t, collectEvents(events), "losing the race must not publish")
	f.records.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestBorrowBook_RejectsPastDueDate(t *testing.T) {
	f := newFixture(t)
	userID, bookID := uuid.New(), uuid.New()

	req := validBorrowRequest(userID, bookID)
	req.DueDate = time.Now().AddDate(0, 0, -1).Format(dateLayout)

	_, err := f.service.BorrowBook(context.Background(), req)

	assert.Error(t, err)
	f.books.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestBorrowBook_RejectsDueBeforeBorrowDate(t *testing.T) {
	f := newFixture(t)
	userID, bookID := uuid.New(), uuid.New()

	req := validBorrowRequest(userID, bookID)
	req.BorrowDate = time.Now().AddDate(0, 0, 20).Format(dateLayout)
	req.DueDate = time.Now().AddDate(0, 0, 10).Format(dateLayout)

	_, err := f.service.BorrowBook(context.Background(), req)

	assert.Error(t, err)
	f.books.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

// ==================== ReturnBook ====================

func TestReturnBook_Success(t *testing.T) {
	f := newFixture(t)
	recordID, bookID, userID := uuid.New(), uuid.New(), uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := f.hub.Subscribe(ctx)

	record := &borrow.BorrowRecord{ID: recordID, UserID: userID, BookID: bookID}
	f.records.On("GetByID", mock.Anything, recordID).Return(record, nil)
	f.records.On("MarkReturnedTx", mock.Anything, mock.Anything, recordID, mock.Anything).Return(true, nil)
	f.books.On("MarkAvailableTx", mock.Anything, mock.Anything, bookID).Return(nil)

	returnDate := time.Now()
	f.records.On("GetDetailedByID", mock.Anything, recordID).Return(&borrow.DetailedRecord{
		BorrowRecord: borrow.BorrowRecord{
			ID: recordID, UserID: userID, BookID: bookID,
			ReturnDate: &returnDate, Returned: true,
		},
		UserName:  "Alice Nguyen",
		BookTitle: "The Go Programming Language",
	}, nil)

	resp, err := f.service.ReturnBook(context.Background(), recordID)

	require.NoError(t, err)
	assert.True(t, resp.Returned)
	require.NotNil(t, resp.ReturnDate)

	got := collectEvents(events)
	require.Len(t, got, 1)
	assert.Equal(t, bookID.String(), got[0].BookID)
	assert.True(t, got[0].Available)
}

func TestReturnBook_NotFound(t *testing.T) {
	f := newFixture(t)
	recordID := uuid.New()

	f.records.On("GetByID", mock.Anything, recordID).Return(nil, borrow.ErrRecordNotFound)

	_, err := f.service.ReturnBook(context.Background(), recordID)

	assert.ErrorIs(t, err, borrow.ErrRecordNotFound)
}

func TestReturnBook_AlreadyReturned(t *testing.T) {
	f := newFixture(t)
	recordID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := f.hub.Subscribe(ctx)

	f.records.On("GetByID", mock.Anything, recordID).Return(
		&borrow.BorrowRecord{ID: recordID, Returned: true}, nil)

	_, err := f.service.ReturnBook(context.Background(), recordID)

	assert.ErrorIs(t, err, borrow.ErrAlreadyReturned)
	assert.Empty(t, collectEvents(events))
	f.records.AssertNotCalled(t, "MarkReturnedTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReturnBook_LosesReturnRace(t *testing.T) {
	f := newFixture(t)
	recordID, bookID := uuid.New(), uuid.New()

	f.records.On("GetByID", mock.Anything, recordID).Return(
		&borrow.BorrowRecord{ID: recordID, BookID: bookID}, nil)
	f.records.On("MarkReturnedTx", mock.Anything, mock.Anything, recordID, mock.Anything).Return(false, nil)

	_, err := f.service.ReturnBook(context.Background(), recordID)

	assert.ErrorIs(t, err, borrow.ErrAlreadyReturned)
	f.books.AssertNotCalled(t, "MarkAvailableTx", mock.Anything, mock.Anything, mock.Anything)
}

// ==================== list operations ====================

func TestListByUser_UnknownUser(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	f.users.On("GetByID", mock.Anything, userID).Return(nil, user.ErrUserNotFound)

	_, err := f.service.ListByUser(context.Background(), userID)

	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestListByUserEmail(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	f.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(patron(userID), nil)
	f.records.On("ListByUser", mock.Anything, userID).Return([]*borrow.DetailedRecord{
		{
			BorrowRecord: borrow.BorrowRecord{
				ID: uuid.New(), UserID: userID, BookID: uuid.New(),
				BorrowDate: time.Now(), DueDate: time.Now().AddDate(0, 0, 7),
			},
			UserName:  "Alice Nguyen",
			BookTitle: "Clean Architecture",
		},
	}, nil)

	records, err := f.service.ListByUserEmail(context.Background(), "alice@example.com")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Clean Architecture", records[0].BookTitle)
}
