package server

import (
	_ "embed"
	"net/http"

	"github.com/bokelai/bookapi/pkg/version"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	serviceTitle       = "Bokelai Book API"
	serviceDescription = "CRUD API for the book catalog"
)

//go:embed openapi.json
var openAPIDocument []byte

type rootResponse struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

func registerMetaRoutes(e *echo.Echo) {
	e.GET("/", root)
	e.GET("/openapi.json", openAPI)
}

func root(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, rootResponse{
		Message:     "Welcome to the " + serviceTitle,
		Description: serviceDescription,
		Version:     version.Version,
	}))
}

func openAPI(c echo.Context) error {
	return errors.WithStack(c.Blob(http.StatusOK, echo.MIMEApplicationJSON, openAPIDocument))
}
