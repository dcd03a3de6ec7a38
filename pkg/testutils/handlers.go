package testutils

import (
	"net/http"

	"github.com/bokelai/bookapi/pkg/binder"
	"github.com/bokelai/bookapi/pkg/books"
	"github.com/bokelai/bookapi/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type handler struct {
	db          *bun.DB
	bookService *books.Service
}

// createBookRequest seeds a book without the public payload rules, so tests
// can set up rows the API itself would refuse to create.
type createBookRequest struct {
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Price     int     `json:"price"`
	Publisher *string `json:"publisher"`
	ISBN      *string `json:"isbn"`
}

// createBook inserts a book and returns it.
// POST /test/books.
func (h *handler) createBook(c echo.Context) error {
	ctx := c.Request().Context()

	c.Set(binder.DisallowUnknownFieldsKey, false)
	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.Price == 0 {
		req.Price = 1
	}

	book := &models.Book{
		Title:     req.Title,
		Author:    req.Author,
		Price:     req.Price,
		Publisher: req.Publisher,
		ISBN:      req.ISBN,
	}
	if _, err := h.bookService.CreateBook(ctx, book); err != nil {
		return errors.Wrap(err, "failed to create book")
	}

	return c.JSON(http.StatusCreated, book)
}

// deleteAllBooksResponse is the response body for deleting all books.
type deleteAllBooksResponse struct {
	Deleted int `json:"deleted"`
}

// deleteAllBooks deletes every book and resets the id sequence.
// DELETE /test/books.
func (h *handler) deleteAllBooks(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.db.NewDelete().
		Model((*models.Book)(nil)).
		Where("1=1").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to delete books")
	}

	_, err = h.db.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = ?", "books")
	if err != nil {
		return errors.Wrap(err, "failed to reset book ids")
	}

	deleted, _ := result.RowsAffected()

	return c.JSON(http.StatusOK, deleteAllBooksResponse{
		Deleted: int(deleted),
	})
}
