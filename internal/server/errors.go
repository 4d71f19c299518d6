package server

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/cibil-extractor/internal/common"
	"github.com/joseph-ayodele/cibil-extractor/internal/report"
)

// toStatus maps pipeline and storage errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, report.ErrNoAccounts):
		return common.NotFoundError(report.ErrNoAccounts.Error())
	case errors.Is(err, common.ErrNotFound):
		return common.NotFoundError(common.MessageOf(err))
	case errors.Is(err, common.ErrInvalidInput), common.IsValidation(err):
		return common.InvalidArgumentError(common.MessageOf(err))
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return common.InternalError(common.MessageOf(err))
	}
}
