// Package testutils provides test-only API endpoints.
// These routes are only registered when ENVIRONMENT=test.
package testutils

import (
	"github.com/bokelai/bookapi/pkg/books"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{db: db, bookService: books.NewService(db)}

	test := e.Group("/test")
	test.POST("/books", h.createBook)
	test.DELETE("/books", h.deleteAllBooks)
}
