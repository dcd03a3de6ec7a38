package books

import (
	"context"
	"database/sql"

	"github.com/bokelai/bookapi/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type ListBooksOptions struct {
	Skip  int
	Limit int
}

// Service is the data access layer for books. Each method runs exactly one
// statement, so SQLite's autocommit makes every call atomic.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// ListBooks returns one page of books ordered by id.
func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := make([]*models.Book, 0)

	err := svc.db.
		NewSelect().
		Model(&books).
		Order("b.id ASC").
		Limit(opts.Limit).
		Offset(opts.Skip).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

// RetrieveBook returns the book with the given id, or nil if there isn't one.
func (svc *Service) RetrieveBook(ctx context.Context, id int) (*models.Book, error) {
	book := &models.Book{}

	err := svc.db.
		NewSelect().
		Model(book).
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// CreateBook inserts the book and returns the id the database assigned. The
// id and created_at columns are left to their database defaults, and the
// model is refreshed with the stored row.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book) (int, error) {
	_, err := svc.db.
		NewInsert().
		Model(book).
		ExcludeColumn("id", "created_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert book")
	}

	logger.FromContext(ctx).Info("book created", logger.Data{"book_id": book.ID})

	return book.ID, nil
}

// UpdateBook overwrites every mutable column of the book with the given id.
// It reports false when no row has that id.
func (svc *Service) UpdateBook(ctx context.Context, id int, book *models.Book) (bool, error) {
	res, err := svc.db.
		NewUpdate().
		Model(book).
		Column(models.MutableColumns...).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to update book")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.WithStack(err)
	}

	return n > 0, nil
}

// DeleteBook removes the book with the given id. It reports false when no
// row has that id.
func (svc *Service) DeleteBook(ctx context.Context, id int) (bool, error) {
	res, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to delete book")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.WithStack(err)
	}
	if n > 0 {
		logger.FromContext(ctx).Info("book deleted", logger.Data{"book_id": id})
	}

	return n > 0, nil
}

// CountBooks returns the number of stored books.
func (svc *Service) CountBooks(ctx context.Context) (int, error) {
	count, err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		Count(ctx)
	return count, errors.WithStack(err)
}
