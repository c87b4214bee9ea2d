package borrow

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type CreateBorrowRequest struct {
	UserID     string `json:"user_id"`
	BookID     string `json:"book_id"`
	BorrowDate string `json:"borrow_date"`
	DueDate    string `json:"due_date"`
}

func (r CreateBorrowRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, is.UUID),
		validation.Field(&r.BookID, validation.Required, is.UUID),
		validation.Field(&r.BorrowDate, validation.Required, validation.Date(dateLayout)),
		validation.Field(&r.DueDate, validation.Required, validation.Date(dateLayout),
			validation.By(r.dueDateInFuture)),
	)
}

// dueDateInFuture enforces both ordering rules at the request boundary:
// the due date must be strictly in the future and strictly after the borrow date.
func (r CreateBorrowRequest) dueDateInFuture(value interface{}) error {
	due, err := time.Parse(dateLayout, value.(string))
	if err != nil {
		return nil // Date rule already reports the parse failure
	}

	today := time.Now().Truncate(24 * time.Hour)
	if !due.After(today) {
		return validation.NewError("validation_due_date", "due date must be in the future")
	}

	if borrowed, err := time.Parse(dateLayout, r.BorrowDate); err == nil {
		if !due.After(borrowed) {
			return validation.NewError("validation_due_date", "due date must be after the borrow date")
		}
	}

	return nil
}

type BorrowRecordResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	UserName   string    `json:"user_name"`
	BookID     uuid.UUID `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	BorrowDate string    `json:"borrow_date"`
	DueDate    string    `json:"due_date"`
	ReturnDate *string   `json:"return_date,omitempty"`
	Returned   bool      `json:"returned"`
}

func ToRecordResponse(r *DetailedRecord) BorrowRecordResponse {
	resp := BorrowRecordResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		UserName:   r.UserName,
		BookID:     r.BookID,
		BookTitle:  r.BookTitle,
		BorrowDate: r.BorrowDate.Format(dateLayout),
		DueDate:    r.DueDate.Format(dateLayout),
		Returned:   r.Returned,
	}
	if r.ReturnDate != nil {
		formatted := r.ReturnDate.Format(dateLayout)
		resp.ReturnDate = &formatted
	}
	return resp
}
