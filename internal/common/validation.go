package common

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidationRule checks one value; nil means the value passed.
type ValidationRule func(fieldName string, value any) *ValidationError

func invalid(field string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)}
}

// Validator collects rule failures across several fields.
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field runs rules against value, recording every failure.
func (v *Validator) Field(fieldName string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

func (v *Validator) HasErrors() bool { return len(v.errors) > 0 }

func (v *Validator) Errors() []ValidationError { return v.errors }

// ErrorMessage joins all failures with "; ".
func (v *Validator) ErrorMessage() string {
	msgs := make([]string, 0, len(v.errors))
	for _, e := range v.errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Error returns the failures wrapped in ErrValidation, or nil.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrValidation, v.ErrorMessage())
}

// ValidateAndReturnError converts failures into a gRPC InvalidArgument status.
func ValidateAndReturnError(v *Validator) error {
	if !v.HasErrors() {
		return nil
	}
	return InvalidArgumentError(v.ErrorMessage())
}

// IsValidation reports whether err came from a Validator.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// Required rejects nil and blank strings.
func Required(fieldName string, value any) *ValidationError {
	switch v := value.(type) {
	case nil:
		return invalid(fieldName, value, "is required")
	case string:
		if strings.TrimSpace(v) == "" {
			return invalid(fieldName, value, "is required")
		}
	}
	return nil
}

// UUID accepts strings that parse as a UUID.
func UUID(fieldName string, value any) *ValidationError {
	s, ok := value.(string)
	if !ok {
		return invalid(fieldName, value, "must be a string")
	}
	if _, err := uuid.Parse(s); err != nil {
		return invalid(fieldName, value, "must be a valid UUID")
	}
	return nil
}

// OneOf accepts empty strings and any of allowed (case-insensitive).
func OneOf(allowed ...string) ValidationRule {
	return func(fieldName string, value any) *ValidationError {
		s, ok := value.(string)
		if !ok {
			return invalid(fieldName, value, "must be a string")
		}
		if s != "" && !slices.Contains(allowed, strings.ToLower(s)) {
			return invalid(fieldName, value, "must be one of %s", strings.Join(allowed, ", "))
		}
		return nil
	}
}

// Range checks that an int lies within [lo, hi].
func Range(lo, hi int) ValidationRule {
	return func(fieldName string, value any) *ValidationError {
		n, ok := value.(int)
		if !ok {
			return invalid(fieldName, value, "must be an integer")
		}
		if n < lo || n > hi {
			return invalid(fieldName, value, "must be between %d and %d", lo, hi)
		}
		return nil
	}
}

// Positive checks that an int is greater than zero.
func Positive(fieldName string, value any) *ValidationError {
	if n, ok := value.(int); !ok || n <= 0 {
		return invalid(fieldName, value, "must be positive")
	}
	return nil
}
