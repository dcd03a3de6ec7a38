package books

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/bokelai/bookapi/pkg/migrations"
	"github.com/bokelai/bookapi/pkg/models"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is its own database.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func seedBooks(t *testing.T, svc *Service, n int) []int {
	t.Helper()
	ids := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		id, err := svc.CreateBook(context.Background(), &models.Book{
			Title:  fmt.Sprintf("Book %d", i),
			Author: "Author",
			Price:  i * 100,
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestService_CreateBook(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := &models.Book{
		Title:       "The Left Hand of Darkness",
		Author:      "Ursula K. Le Guin",
		Publisher:   pointerutil.String("Ace"),
		Price:       450,
		PublishDate: pointerutil.String("1969-03-01"),
		ISBN:        pointerutil.String("9780441478125"),
		CoverURL:    pointerutil.String("https://example.com/lhod.jpg"),
	}
	id, err := svc.CreateBook(ctx, book)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, book.ID)
	assert.False(t, book.CreatedAt.IsZero())

	found, err := svc.RetrieveBook(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, book.Title, found.Title)
	assert.Equal(t, book.Author, found.Author)
	assert.Equal(t, book.Publisher, found.Publisher)
	assert.Equal(t, 450, found.Price)
	assert.Equal(t, book.PublishDate, found.PublishDate)
	assert.Equal(t, book.ISBN, found.ISBN)
	assert.Equal(t, book.CoverURL, found.CoverURL)
	assert.False(t, found.CreatedAt.IsZero())
}

func TestService_CreateBook_AssignsFreshIDs(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)

	ids := seedBooks(t, svc, 3)
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestService_CreateBook_OptionalFieldsStayNull(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	id, err := svc.CreateBook(ctx, &models.Book{Title: "A", Author: "B", Price: 100})
	require.NoError(t, err)

	found, err := svc.RetrieveBook(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Nil(t, found.Publisher)
	assert.Nil(t, found.PublishDate)
	assert.Nil(t, found.ISBN)
	assert.Nil(t, found.CoverURL)
}

func TestService_CreateBook_StorageRejectsNonPositivePrice(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for _, price := range []int{0, -5} {
		_, err := svc.CreateBook(ctx, &models.Book{Title: "A", Author: "B", Price: price})
		require.Error(t, err)
	}

	count, err := svc.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestService_RetrieveBook_Absent(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)

	found, err := svc.RetrieveBook(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestService_ListBooks(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	t.Run("empty table yields an empty list", func(t *testing.T) {
		books, err := svc.ListBooks(ctx, ListBooksOptions{Skip: 0, Limit: 10})
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	ids := seedBooks(t, svc, 7)

	t.Run("orders by id and honors limit", func(t *testing.T) {
		books, err := svc.ListBooks(ctx, ListBooksOptions{Skip: 0, Limit: 3})
		require.NoError(t, err)
		require.Len(t, books, 3)
		for i, b := range books {
			assert.Equal(t, ids[i], b.ID)
		}
	})

	t.Run("skip past the end yields an empty list", func(t *testing.T) {
		books, err := svc.ListBooks(ctx, ListBooksOptions{Skip: 50, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("consecutive pages are disjoint and cover the double page", func(t *testing.T) {
		const n = 3
		first, err := svc.ListBooks(ctx, ListBooksOptions{Skip: 0, Limit: n})
		require.NoError(t, err)
		second, err := svc.ListBooks(ctx, ListBooksOptions{Skip: n, Limit: n})
		require.NoError(t, err)
		both, err := svc.ListBooks(ctx, ListBooksOptions{Skip: 0, Limit: 2 * n})
		require.NoError(t, err)

		seen := map[int]bool{}
		for _, b := range first {
			seen[b.ID] = true
		}
		for _, b := range second {
			assert.False(t, seen[b.ID], "book %d is on both pages", b.ID)
			seen[b.ID] = true
		}

		union := []int{}
		for _, b := range append(first, second...) {
			union = append(union, b.ID)
		}
		expected := []int{}
		for _, b := range both {
			expected = append(expected, b.ID)
		}
		assert.Equal(t, expected, union)
	})
}

func TestService_UpdateBook(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	original := &models.Book{Title: "A", Author: "B", Price: 100, ISBN: pointerutil.String("123")}
	id, err := svc.CreateBook(ctx, original)
	require.NoError(t, err)

	updated, err := svc.UpdateBook(ctx, id, &models.Book{
		Title:     "A2",
		Author:    "B2",
		Publisher: pointerutil.String("P"),
		Price:     200,
	})
	require.NoError(t, err)
	assert.True(t, updated)

	found, err := svc.RetrieveBook(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)
	assert.Equal(t, "A2", found.Title)
	assert.Equal(t, "B2", found.Author)
	assert.Equal(t, pointerutil.String("P"), found.Publisher)
	assert.Equal(t, 200, found.Price)
	// A full update clears optional fields that weren't supplied.
	assert.Nil(t, found.ISBN)
	assert.True(t, original.CreatedAt.Equal(found.CreatedAt))
}

func TestService_UpdateBook_Missing(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	seedBooks(t, svc, 2)

	updated, err := svc.UpdateBook(ctx, 99, &models.Book{Title: "X", Author: "Y", Price: 1})
	require.NoError(t, err)
	assert.False(t, updated)

	count, err := svc.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	books, err := svc.ListBooks(ctx, ListBooksOptions{Limit: 10})
	require.NoError(t, err)
	for _, b := range books {
		assert.NotEqual(t, "X", b.Title)
	}
}

func TestService_DeleteBook(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	ids := seedBooks(t, svc, 2)

	deleted, err := svc.DeleteBook(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, deleted)

	found, err := svc.RetrieveBook(ctx, ids[0])
	require.NoError(t, err)
	assert.Nil(t, found)

	t.Run("deleting again reports nothing removed", func(t *testing.T) {
		deleted, err := svc.DeleteBook(ctx, ids[0])
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	count, err := svc.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
