package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Book is a single catalog entry. ID and CreatedAt are assigned by the
// database on insert and never written afterwards.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID          int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt   time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	Title       string    `bun:",notnull" json:"title"`
	Author      string    `bun:",notnull" json:"author"`
	Publisher   *string   `json:"publisher"`
	Price       int       `bun:",notnull" json:"price"`
	PublishDate *string   `bun:"publish_date" json:"publish_date"`
	ISBN        *string   `bun:"isbn" json:"isbn"`
	CoverURL    *string   `bun:"cover_url" json:"cover_url"`
}

// MutableColumns are the columns a full update overwrites.
var MutableColumns = []string{
	"title",
	"author",
	"publisher",
	"price",
	"publish_date",
	"isbn",
	"cover_url",
}
