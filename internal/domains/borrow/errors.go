package borrow

import "errors"

var (
	ErrRecordNotFound     = errors.New("borrow record not found")
	ErrBorrowLimitReached = errors.New("you have reached the maximum limit of 5 borrowed books")
	ErrHasOverdueBooks    = errors.New("you have overdue books, please return them before borrowing more")
	ErrAlreadyReturned    = errors.New("this book has already been returned")
)
