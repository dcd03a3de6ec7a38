package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bokelai/bookapi/pkg/binder"
	"github.com/bokelai/bookapi/pkg/books"
	"github.com/bokelai/bookapi/pkg/config"
	"github.com/bokelai/bookapi/pkg/errcodes"
	"github.com/bokelai/bookapi/pkg/testutils"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	// Set before any group is created, since groups capture it for their
	// catch-all routes.
	echo.NotFoundHandler = notFoundHandler

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)
	registerMetaRoutes(e)

	books.RegisterRoutes(e, db)

	if cfg.Environment == "test" {
		testutils.RegisterRoutes(e, db)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
