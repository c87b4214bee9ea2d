package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/book"
	"library-backend/internal/domains/borrow"
	"library-backend/internal/domains/user"
)

type mockService struct{ mock.Mock }

func (m *mockService) BorrowBook(ctx context.Context, req borrow.CreateBorrowRequest) (*borrow.BorrowRecordResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*borrow.BorrowRecordResponse), args.Error(1)
}

func (m *mockService) ReturnBook(ctx context.Context, recordID uuid.UUID) (*borrow.BorrowRecordResponse, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*borrow.BorrowRecordResponse), args.Error(1)
}

func (m *mockService) List(ctx context.Context) ([]borrow.BorrowRecordResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]borrow.BorrowRecordResponse), args.Error(1)
}

func (m *mockService) ListByUser(ctx context.Context, userID uuid.UUID) ([]borrow.BorrowRecordResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]borrow.BorrowRecordResponse), args.Error(1)
}

func (m *mockService) ListByUserEmail(ctx context.Context, email string) ([]borrow.BorrowRecordResponse, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]borrow.BorrowRecordResponse), args.Error(1)
}

func (m *mockService) ListOverdue(ctx context.Context) ([]borrow.BorrowRecordResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]borrow.BorrowRecordResponse), args.Error(1)
}

func (m *mockService) OverdueReport(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func setupTestRouter(svc borrow.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBorrowHandler(svc)

	router := gin.New()
	v1 := router.Group("/api/v1/borrow-records")
	v1.POST("", h.Borrow)
	v1.PUT("/return/:id", h.Return)
	v1.GET("", h.List)
	v1.GET("/overdue", h.ListOverdue)
	v1.GET("/overdue/report", h.OverdueReport)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBorrow_Created(t *testing.T) {
	svc := new(mockService)
	router := setupTestRouter(svc)

	svc.On("BorrowBook", mock.Anything, mock.Anything).Return(&borrow.BorrowRecordResponse{
		ID:        uuid.New(),
		BookTitle: "The Go Programming Language",
	}, nil)

	w := postJSON(t, router, "/api/v1/borrow-records", borrow.CreateBorrowRequest{
		UserID:     uuid.NewString(),
		BookID:     uuid.NewString(),
		BorrowDate: "2026-08-30",
		DueDate:    "2026-09-13",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), "The Go Programming Language")
}

func TestBorrow_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"book not found", fmt.Errorf("%w with id: %s", book.ErrBookNotFound, uuid.New()), http.StatusNotFound},
		{"user not found", fmt.Errorf("%w with id: %s", user.ErrUserNotFound, uuid.New()), http.StatusNotFound},
		{"book unavailable", book.ErrBookUnavailable, http.StatusBadRequest},
		{"limit reached", borrow.ErrBorrowLimitReached, http.StatusBadRequest},
		{"overdue books", borrow.ErrHasOverdueBooks, http.StatusBadRequest},
		{"unexpected failure", fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockService)
			router := setupTestRouter(svc)
			svc.On("BorrowBook", mock.Anything, mock.Anything).Return(nil, tc.serviceErr)

			w := postJSON(t, router, "/api/v1/borrow-records", borrow.CreateBorrowRequest{
				UserID:     uuid.NewString(),
				BookID:     uuid.NewString(),
				BorrowDate: "2026-08-30",
				DueDate:    "2026-09-13",
			})

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantStatus == http.StatusInternalServerError {
				assert.Contains(t, w.Body.String(), "internal server error")
				assert.NotContains(t, w.Body.String(), "connection refused")
			}
		})
	}
}

func TestBorrow_InvalidBody(t *testing.T) {
	svc := new(mockService)
	router := setupTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/borrow-records", bytes.NewReader([]byte("not-json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "BorrowBook", mock.Anything, mock.Anything)
}

func TestReturn_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"record not found", fmt.Errorf("%w with id: %s", borrow.ErrRecordNotFound, uuid.New()), http.StatusNotFound},
		{"already returned", borrow.ErrAlreadyReturned, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockService)
			router := setupTestRouter(svc)
			svc.On("ReturnBook", mock.Anything, mock.Anything).Return(nil, tc.serviceErr)

			req := httptest.NewRequest(http.MethodPut, "/api/v1/borrow-records/return/"+uuid.NewString(), nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestReturn_InvalidID(t *testing.T) {
	svc := new(mockService)
	router := setupTestRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/borrow-records/return/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ReturnBook", mock.Anything, mock.Anything)
}

func TestOverdueReport_PlainText(t *testing.T) {
	svc := new(mockService)
	router := setupTestRouter(svc)

	svc.On("OverdueReport", mock.Anything).Return("No overdue books.", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/borrow-records/overdue/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No overdue books.", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestListOverdue_OK(t *testing.T) {
	svc := new(mockService)
	router := setupTestRouter(svc)

	svc.On("ListOverdue", mock.Anything).Return([]borrow.BorrowRecordResponse{
		{ID: uuid.New(), BookTitle: "Refactoring", Returned: false},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/borrow-records/overdue", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Refactoring")
}
