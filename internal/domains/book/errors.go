package book

import "errors"

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrISBNAlreadyExists = errors.New("a book with this ISBN already exists")
	ErrBookUnavailable   = errors.New("book is currently not available for borrowing")
	ErrBookOnLoan        = errors.New("book cannot be deleted while it is borrowed")
)
