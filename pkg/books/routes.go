package books

import (
	"github.com/bokelai/bookapi/pkg/binder"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the book CRUD routes under /books.
func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
	}

	// Clients commonly send back the id and created_at they received, so
	// extra fields in book payloads are ignored rather than rejected.
	g := e.Group("/books", binder.AllowUnknownFields)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.deleteBook)
}
