package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON decodes and validates a request body. On failure it writes the
// 400 response itself and returns false; the handler must not continue.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		RespondValidation(ctx, "Validation failed", parseBindError(err, out, "json"))
		return false
	}

	return true
}

// BindQuery is the query-string counterpart, for struct fields carrying
// form tags.
func BindQuery(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindQuery(out)

	if err != nil {
		RespondValidation(ctx, "Invalid query parameters", parseBindError(err, out, "form"))
		return false
	}

	return true
}

func parseBindError(err error, out interface{}, tag string) []FieldError {
	rootType := baseStructType(out)

	// validator errors (struct bind tags)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			fields = append(fields, FieldError{
				Field:   wireFieldName(rootType, fieldError.Field(), tag),
				Message: validationMessage(fieldError.Tag(), fieldError.Param()),
			})
		}
		return fields
	}

	// in the event of bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return []FieldError{{Field: "body", Message: "must be valid JSON"}}
	}

	// in the event of a type mismatch

	var typeError *json.UnmarshalTypeError

	if errors.As(err, &typeError) {
		field := strings.TrimSpace(typeError.Field)
		if field == "" {
			field = "body"
		}

		return []FieldError{{
			Field:   field,
			Message: fmt.Sprintf("must be of type %s", typeError.Type.String()),
		}}
	}

	// final fallback if the error could not be deciphered
	return []FieldError{{Field: "body", Message: err.Error()}}
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

// wireFieldName maps a Go struct field back to its json/form name so error
// payloads speak the caller's vocabulary. Request structs here are flat, no
// nested paths to walk.
func wireFieldName(rootType reflect.Type, structField, tag string) string {
	if rootType == nil {
		return structField
	}

	sf, ok := rootType.FieldByName(structField)
	if !ok {
		return structField
	}

	name, _, _ := strings.Cut(sf.Tag.Get(tag), ",")
	if name == "" || name == "-" {
		return structField
	}

	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
