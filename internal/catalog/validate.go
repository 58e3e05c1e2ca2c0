package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError is a validation failure on a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every invalid field of an Input.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return "invalid item: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Fields maps field names to their first error message.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

// Validate checks in against the kind's field rules and returns the item it describes.
// Values are trimmed; fields that are not part of the kind are dropped.
func Validate(k Kind, in Input) (Item, error) {
	item := Item{Kind: k.Name, Fields: make(map[string]string, len(k.Fields))}
	var errs []FieldError

	for _, f := range k.Fields {
		value := strings.TrimSpace(in.Fields[f.Name])
		tag := "omitempty"
		if f.Required {
			tag = "required"
		}
		if f.MaxLen > 0 {
			tag += ",max=" + strconv.Itoa(f.MaxLen)
		}
		if err := validate.Var(value, tag); err != nil {
			errs = append(errs, fieldError(f, err))
			continue
		}
		item.Fields[f.Name] = value
	}

	year := strings.TrimSpace(in.Year)
	switch n, err := parseYear(year); {
	case year == "":
		errs = append(errs, FieldError{Field: "year", Message: "Year is required"})
	case errors.Is(err, strconv.ErrRange):
		errs = append(errs, FieldError{Field: "year", Message: "Year is out of range"})
	case err != nil:
		errs = append(errs, FieldError{Field: "year", Message: "Year must be a whole number"})
	default:
		item.Year = n
	}

	if len(errs) > 0 {
		return Item{}, &ValidationError{Errors: errs}
	}
	return item, nil
}

func fieldError(f Field, err error) FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return FieldError{Field: f.Name, Message: fmt.Sprintf("%s is invalid", f.Label)}
	}

	var message string
	switch verrs[0].Tag() {
	case "required":
		message = fmt.Sprintf("%s is required", f.Label)
	case "max":
		message = fmt.Sprintf("%s must be at most %s characters", f.Label, verrs[0].Param())
	default:
		message = fmt.Sprintf("%s is invalid", f.Label)
	}
	return FieldError{Field: f.Name, Message: message}
}
