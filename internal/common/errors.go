package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Sentinels shared by the storage, pipeline and transport layers.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Codes carried by AppError. They are stable and surface in API error bodies.
const (
	CodeConfig      = "CONFIG_ERROR"
	CodeNoAccounts  = "NO_ACCOUNTS"
	CodeUnsupported = "UNSUPPORTED_FORMAT"
	CodeExtraction  = "EXTRACTION_FAILED"
	CodeStorage     = "STORAGE_ERROR"
)

// AppError tags a failure with a code and a user-facing message. The cause
// stays reachable through errors.Is / errors.As.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WrapError prefixes err with message, keeping it in the chain. nil stays nil.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// CodeOf returns the code of the outermost AppError in err's chain, or "".
func CodeOf(err error) string {
	if ae, ok := asAppError(err); ok {
		return ae.Code
	}
	return ""
}

// MessageOf returns the message of the outermost AppError, or err.Error().
func MessageOf(err error) string {
	if ae, ok := asAppError(err); ok {
		return ae.Message
	}
	return err.Error()
}

func asAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

// gRPC status helpers

func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InvalidArgumentErrorf(format string, args ...any) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}
