package borrow

import (
	"time"

	"github.com/google/uuid"
)

type BorrowRecord struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	BookID     uuid.UUID  `json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Returned   bool       `json:"returned"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// DetailedRecord carries the record together with the joined
// user name and book title for list endpoints and the report.
type DetailedRecord struct {
	BorrowRecord
	UserName  string `json:"user_name"`
	BookTitle string `json:"book_title"`
}
