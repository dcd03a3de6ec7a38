package binder

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/bokelai/bookapi/pkg/errcodes"
	"github.com/creasty/defaults"
	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
)

// Context keys a route can set to relax the binder's defaults.
const (
	DisallowEmptyBodyKey     = "disallow_empty_body"
	DisallowUnknownFieldsKey = "disallow_unknown_fields"
)

var unknownFieldsRE = regexp.MustCompile(`^json: unknown field "(.*)"$`)

// Binder is a custom struct that implements the Echo Binder interface. It binds
// to a struct, uses mold to clean up the params, and validator to validate
// them.
type Binder struct {
	queryDecoder        *schema.Decoder
	lenientQueryDecoder *schema.Decoder
	conform             *mold.Transformer
	validate            *validator.Validate
}

// New initializes a new Binder instance.
func New() (*Binder, error) {
	queryDecoder := schema.NewDecoder()
	queryDecoder.SetAliasTag("query")
	lenientQueryDecoder := schema.NewDecoder()
	lenientQueryDecoder.SetAliasTag("query")
	lenientQueryDecoder.IgnoreUnknownKeys(true)
	conform := modifiers.New()
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Binder{queryDecoder, lenientQueryDecoder, conform, validate}, nil
}

// AllowUnknownFields is route middleware that makes the binder ignore JSON
// fields and query parameters the target struct doesn't declare.
func AllowUnknownFields(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(DisallowUnknownFieldsKey, false)
		return next(c)
	}
}

// Bind binds, modifies, and validates payloads against the given struct.
func (b *Binder) Bind(i interface{}, c echo.Context) error {
	req := c.Request()

	disallowEmptyBody := true
	if disallow, ok := c.Get(DisallowEmptyBodyKey).(bool); ok {
		disallowEmptyBody = disallow
	}
	disallowUnknownFields := true
	if disallow, ok := c.Get(DisallowUnknownFieldsKey).(bool); ok {
		disallowUnknownFields = disallow
	}

	// ContentLength is -1 for chunked bodies.
	hasBody := req.ContentLength > 0 || (req.ContentLength < 0 && req.Body != nil && req.Body != http.NoBody)

	if hasBody {
		ctype := req.Header.Get(echo.HeaderContentType)
		if !strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
			return errcodes.UnsupportedMediaType()
		}

		dec := json.NewDecoder(req.Body)
		if disallowUnknownFields {
			dec.DisallowUnknownFields()
		}
		defer req.Body.Close()
		if err := dec.Decode(i); err != nil {
			if errors.Is(err, io.EOF) {
				if disallowEmptyBody {
					return errcodes.EmptyRequestBody()
				}
				hasBody = false
			} else {
				return decodeError(c, err)
			}
		}
		// only a single JSON value is allowed
		if hasBody {
			if _, err := dec.Token(); !errors.Is(err, io.EOF) {
				return errcodes.MalformedPayload()
			}
		}
	}

	if !hasBody {
		if req.Method == http.MethodGet || req.Method == http.MethodDelete {
			if err := b.decodeQuery(i, c.QueryParams(), disallowUnknownFields); err != nil {
				return errors.WithStack(err)
			}
		} else if disallowEmptyBody {
			return errcodes.EmptyRequestBody()
		}
	}

	if err := b.conform.Struct(req.Context(), i); err != nil {
		return errors.WithStack(err)
	}

	if err := defaults.Set(i); err != nil {
		return errors.WithStack(err)
	}

	if err := b.validate.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) || len(errs) == 0 {
			return errors.WithStack(err)
		}
		return errcodes.ValidationError(formatValidationError(errs[0]))
	}
	return nil
}

func decodeError(c echo.Context, err error) error {
	// return better error message when there are unknown fields
	if matches := unknownFieldsRE.FindAllStringSubmatch(err.Error(), -1); len(matches) > 0 && len(matches[0]) > 1 {
		return errcodes.UnknownParameter(matches[0][1])
	}

	// return better error message on type errors
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return errcodes.ValidationTypeError(formatUnmarshalTypeError(typeErr))
	}

	logger.FromEchoContext(c).Err(err).Warn("json decode error")

	return errcodes.MalformedPayload()
}

func (b *Binder) decodeQuery(i interface{}, params url.Values, disallowUnknownKeys bool) error {
	dec := b.queryDecoder
	if !disallowUnknownKeys {
		dec = b.lenientQueryDecoder
	}
	err := dec.Decode(i, params)
	if err == nil {
		return nil
	}

	errs, ok := err.(schema.MultiError)
	if !ok {
		return errors.WithStack(err)
	}

	// MultiError is a map, so pick the first key in sorted order to keep the
	// message stable across requests.
	var first error
	firstKey := ""
	for key, e := range errs {
		if first == nil || key < firstKey {
			first, firstKey = e, key
		}
	}

	var convErr schema.ConversionError
	if errors.As(first, &convErr) {
		return errcodes.ValidationTypeError(formatSchemaConversionError(convErr))
	}
	var unknownErr schema.UnknownKeyError
	if errors.As(first, &unknownErr) {
		return errcodes.UnknownParameter(unknownErr.Key)
	}

	return errors.WithStack(first)
}
