package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

const (
	gt       = "gt"
	gte      = "gte"
	lt       = "lt"
	lte      = "lte"
	mx       = "max"
	mn       = "min"
	ne       = "ne"
	oneof    = "oneof"
	required = "required"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case gt:
		return fmt.Sprintf("%q must be greater than %s", field, param)
	case gte:
		return fmt.Sprintf("%q must be greater than or equal to %s", field, param)
	case lt:
		return fmt.Sprintf("%q must be less than %s", field, param)
	case lte:
		return fmt.Sprintf("%q must be less than or equal to %s", field, param)
	case mx:
		return formatBound(field, param, err.Kind(), "less than or equal to")
	case mn:
		return formatBound(field, param, err.Kind(), "greater than or equal to")
	case ne:
		return fmt.Sprintf("%q can't be %q", field, param)
	case oneof:
		valids := []string{}
		for _, p := range strings.Fields(param) {
			valids = append(valids, fmt.Sprintf("%q", p))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(valids, ", "))
	case required:
		return fmt.Sprintf("%q is required", field)
	default:
		return fmt.Sprintf("%q failed the %q check", field, err.Tag())
	}
}

// formatBound renders min/max errors, which compare the value itself for
// numbers and the length for strings and slices.
func formatBound(field, param string, kind reflect.Kind, relation string) string {
	//exhaustive:ignore
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s %s", field, relation, param)
	case reflect.Slice:
		return fmt.Sprintf("%q length must be %s %s %s", field, relation, param, plural("element", param))
	default:
		return fmt.Sprintf("%q length must be %s %s %s", field, relation, param, plural("character", param))
	}
}

func plural(noun, count string) string {
	if count == "1" {
		return noun
	}
	return noun + "s"
}
