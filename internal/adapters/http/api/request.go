package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/itemstore/internal/domain/model"
)

// itemRequest mirrors the OpenAPI Item schema for POST and PUT bodies.
// Pointer fields let validation tell a missing field from a zero value.
type itemRequest struct {
	ID          *int     `json:"id" validate:"required"`
	Name        *string  `json:"name" validate:"required"`
	Price       *float64 `json:"price" validate:"required"`
	Description *string  `json:"description"`
}

// toItem converts a validated request into a domain item.
func (r itemRequest) toItem() model.Item {
	return model.Item{
		ID:          *r.ID,
		Name:        *r.Name,
		Price:       *r.Price,
		Description: r.Description,
	}
}

// fieldError describes one failed constraint in a request.
type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// validationError carries the per-field failures of a rejected request.
type validationError struct {
	fields []fieldError
}

func (e *validationError) Error() string { return summarize(e.fields) }

// invalid builds an ErrValidation error for op from the given failures.
func invalid(op string, fields ...fieldError) error {
	return WrapKind(op, ErrValidation, &validationError{fields: fields})
}

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeItem reads exactly one JSON object from the body and validates it.
func decodeItem(r *http.Request, v *validator.Validate) (model.Item, error) {
	const op = "decode item"

	dec := json.NewDecoder(r.Body)
	var req itemRequest
	if err := dec.Decode(&req); err != nil {
		return model.Item{}, decodeError(op, err)
	}
	// Anything but whitespace after the object makes the body malformed.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.Item{}, WrapKind(op, ErrTooLarge, err)
		}
		return model.Item{}, invalid(op, fieldError{Field: "body", Reason: "unexpected data after JSON object"})
	}

	errs, err := validateItem(v, req)
	if err != nil {
		return model.Item{}, Wrap("validate item", err)
	}
	if len(errs) > 0 {
		return model.Item{}, invalid("validate item", errs...)
	}
	return req.toItem(), nil
}

// decodeError classifies a json.Decoder failure without leaking Go type names.
func decodeError(op string, err error) error {
	var (
		tooLarge *http.MaxBytesError
		typeErr  *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &tooLarge):
		return WrapKind(op, ErrTooLarge, err)
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return invalid(op, fieldError{Field: "body", Reason: "must be a JSON object"})
		}
		return invalid(op, fieldError{Field: typeErr.Field, Reason: expected(typeErr.Type)})
	case errors.Is(err, io.EOF):
		return invalid(op, fieldError{Field: "body", Reason: "request body required"})
	default:
		return invalid(op, fieldError{Field: "body", Reason: "invalid JSON"})
	}
}

// expected names the JSON type a Go destination type accepts.
func expected(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "invalid type"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "must be an integer"
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	case reflect.String:
		return "must be a string"
	default:
		return "invalid type"
	}
}

// parseInt reads an integer parameter. Out-of-range values clamp to the
// nearest int rather than failing.
func parseInt(field, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, invalid("parse "+field, fieldError{Field: field, Reason: "must be an integer"})
	}
	return n, nil
}

// validateItem checks req and returns per-field failures.
func validateItem(v *validator.Validate, req itemRequest) ([]fieldError, error) {
	err := v.Struct(req)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		reason := fe.Tag()
		if reason == "required" {
			reason = "field required"
		}
		out = append(out, fieldError{Field: fe.Field(), Reason: reason})
	}
	return out, nil
}

// summarize renders field errors as a single detail message.
func summarize(errs []fieldError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Field + ": " + e.Reason
	}
	return strings.Join(parts, "; ")
}
