package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"library-backend/internal/domains/book"
	"library-backend/internal/shared/response"
	"library-backend/pkg/broadcast"
	"library-backend/pkg/logger"
)

type BookHandler struct {
	service book.Service
	hub     *broadcast.Hub[book.AvailabilityEvent]
}

func NewBookHandler(service book.Service, hub *broadcast.Hub[book.AvailabilityEvent]) *BookHandler {
	return &BookHandler{service: service, hub: hub}
}

// Create POST /api/v1/books
func (h *BookHandler) Create(c *gin.Context) {
	var req book.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "book created successfully", b)
}

// List GET /api/v1/books
func (h *BookHandler) List(c *gin.Context) {
	books, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "books retrieved successfully", books)
}

// GetByID GET /api/v1/books/:id
func (h *BookHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid book id")
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "book retrieved successfully", b)
}

// Search GET /api/v1/books/search/:field?q=&page=&size=
func (h *BookHandler) Search(field book.SearchField) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

		result, err := h.service.Search(c.Request.Context(), field, query, page, size)
		if err != nil {
			h.handleError(c, err)
			return
		}

		response.Success(c, http.StatusOK, "books retrieved successfully", result)
	}
}

// Update PUT /api/v1/books/:id
func (h *BookHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid book id")
		return
	}

	var req book.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "book updated successfully", b)
}

// Delete DELETE /api/v1/books/:id
func (h *BookHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid book id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AvailabilityStream GET /api/v1/books/availability-stream
// Streams availability changes as server-sent events until the client disconnects.
func (h *BookHandler) AvailabilityStream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// đẩy headers ngay để client thấy stream mở trước khi có event đầu tiên
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	events := h.hub.Subscribe(c.Request.Context())

	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent("availability", ev)
		return true
	})
}

func (h *BookHandler) handleError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	switch {
	case errors.As(err, &validationErrs):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, book.ErrBookNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, book.ErrISBNAlreadyExists):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, book.ErrBookOnLoan):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error("book handler error", err)
		response.Error(c, http.StatusInternalServerError, "internal server error")
	}
}
