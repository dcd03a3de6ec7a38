package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/bokelai/bookapi/pkg/config"
	"github.com/bokelai/bookapi/pkg/migrations"
	"github.com/bokelai/bookapi/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

func newFileDB(t *testing.T) *bun.DB {
	t.Helper()

	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "nested", "books.db")
	cfg.DatabaseBusyTimeout = 250 * time.Millisecond

	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	return db
}

func TestNew_Pragmas(t *testing.T) {
	t.Parallel()
	db := newFileDB(t)
	ctx := context.Background()

	var mode string
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 250, timeout)
}

func TestNew_InMemory(t *testing.T) {
	t.Parallel()

	db, err := New(config.NewForTest())
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestNew_ConcurrentWrites(t *testing.T) {
	t.Parallel()
	db := newFileDB(t)
	ctx := context.Background()

	const n = 20
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			book := &models.Book{Title: fmt.Sprintf("Book %d", i), Author: "Author", Price: i + 1}
			_, err := db.NewInsert().Model(book).ExcludeColumn("id", "created_at").Exec(gctx)
			return err
		})
	}
	require.NoError(t, g.Wait())

	count, err := db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func TestNew_LastWriteWins(t *testing.T) {
	t.Parallel()
	db := newFileDB(t)
	ctx := context.Background()

	book := &models.Book{Title: "Original", Author: "Author", Price: 10}
	_, err := db.NewInsert().Model(book).ExcludeColumn("id", "created_at").Returning("*").Exec(ctx)
	require.NoError(t, err)

	for _, price := range []int{20, 30} {
		_, err := db.NewUpdate().
			Model(&models.Book{Title: "Original", Author: "Author", Price: price}).
			Column("title", "author", "price").
			Where("id = ?", book.ID).
			Exec(ctx)
		require.NoError(t, err)
	}

	got := &models.Book{}
	require.NoError(t, db.NewSelect().Model(got).Where("b.id = ?", book.ID).Scan(ctx))
	assert.Equal(t, 30, got.Price)
}
