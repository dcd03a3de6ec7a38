package books

import "github.com/bokelai/bookapi/pkg/models"

type ListBooksQuery struct {
	Skip  int  `query:"skip" json:"skip,omitempty" validate:"min=0"`
	Limit *int `query:"limit" json:"limit,omitempty" default:"10" validate:"required,min=1"`
}

// BookPayload is the request body for both create and full update.
type BookPayload struct {
	Title       string  `json:"title" mod:"trim" validate:"required"`
	Author      string  `json:"author" mod:"trim" validate:"required"`
	Publisher   *string `json:"publisher,omitempty"`
	Price       *int    `json:"price" validate:"required,gt=0"`
	PublishDate *string `json:"publish_date,omitempty"`
	ISBN        *string `json:"isbn,omitempty"`
	CoverURL    *string `json:"cover_url,omitempty"`
}

func (p *BookPayload) toModel() *models.Book {
	return &models.Book{
		Title:       p.Title,
		Author:      p.Author,
		Publisher:   p.Publisher,
		Price:       *p.Price,
		PublishDate: p.PublishDate,
		ISBN:        p.ISBN,
		CoverURL:    p.CoverURL,
	}
}
