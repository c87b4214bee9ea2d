package book

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var isbnRegex = regexp.MustCompile(`^\d{13}$`)

type CreateBookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublicationDate string `json:"publication_date"`
	Genre           string `json:"genre"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Author, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.ISBN, validation.Required, validation.Match(isbnRegex).Error("ISBN must be exactly 13 digits")),
		validation.Field(&r.PublicationDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&r.Genre, validation.Required, validation.Length(1, 100)),
	)
}

type UpdateBookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublicationDate string `json:"publication_date"`
	Genre           string `json:"genre"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Author, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.ISBN, validation.Required, validation.Match(isbnRegex).Error("ISBN must be exactly 13 digits")),
		validation.Field(&r.PublicationDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&r.Genre, validation.Required, validation.Length(1, 100)),
	)
}

type BookResponse struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	PublicationDate string    `json:"publication_date"`
	Genre           string    `json:"genre"`
	Available       bool      `json:"available"`
	CreatedAt       time.Time `json:"created_at"`
}

// SearchResult is a paged search response.
type SearchResult struct {
	Books      []BookResponse `json:"books"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalItems int64          `json:"total_items"`
}

func ToBookResponse(b *Book) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		PublicationDate: b.PublicationDate.Format("2006-01-02"),
		Genre:           b.Genre,
		Available:       b.Available,
		CreatedAt:       b.CreatedAt,
	}
}
