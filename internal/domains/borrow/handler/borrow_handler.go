package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"library-backend/internal/domains/book"
	"library-backend/internal/domains/borrow"
	"library-backend/internal/domains/user"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
	"library-backend/pkg/logger"
)

type BorrowHandler struct {
	service borrow.Service
}

func NewBorrowHandler(service borrow.Service) *BorrowHandler {
	return &BorrowHandler{service: service}
}

// Borrow POST /api/v1/borrow-records
func (h *BorrowHandler) Borrow(c *gin.Context) {
	var req borrow.CreateBorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.service.BorrowBook(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "book borrowed successfully", record)
}

// Return PUT /api/v1/borrow-records/return/:id
func (h *BorrowHandler) Return(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid record id")
		return
	}

	record, err := h.service.ReturnBook(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "book returned successfully", record)
}

// List GET /api/v1/borrow-records
func (h *BorrowHandler) List(c *gin.Context) {
	records, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "borrow records retrieved successfully", records)
}

// ListByUser GET /api/v1/borrow-records/user/:userId
func (h *BorrowHandler) ListByUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	records, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "borrow records retrieved successfully", records)
}

// Me GET /api/v1/borrow-records/me
func (h *BorrowHandler) Me(c *gin.Context) {
	email := c.GetString(middleware.ContextEmail)

	records, err := h.service.ListByUserEmail(c.Request.Context(), email)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "borrow records retrieved successfully", records)
}

// ListOverdue GET /api/v1/borrow-records/overdue
func (h *BorrowHandler) ListOverdue(c *gin.Context) {
	records, err := h.service.ListOverdue(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "overdue records retrieved successfully", records)
}

// OverdueReport GET /api/v1/borrow-records/overdue/report
func (h *BorrowHandler) OverdueReport(c *gin.Context) {
	report, err := h.service.OverdueReport(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.String(http.StatusOK, report)
}

func (h *BorrowHandler) handleError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	switch {
	case errors.As(err, &validationErrs):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, borrow.ErrRecordNotFound),
		errors.Is(err, book.ErrBookNotFound),
		errors.Is(err, user.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, book.ErrBookUnavailable),
		errors.Is(err, borrow.ErrBorrowLimitReached),
		errors.Is(err, borrow.ErrHasOverdueBooks),
		errors.Is(err, borrow.ErrAlreadyReturned):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error("borrow handler error", err)
		response.Error(c, http.StatusInternalServerError, "internal server error")
	}
}
