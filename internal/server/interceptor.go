package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/cibil-extractor/internal/common"
)

// MDRequestID carries a caller-chosen request id; one is generated when absent.
const MDRequestID = "x-request-id"

// LoggingInterceptor tags each call with a request id and logs its outcome.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := firstMD(ctx, MDRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx = common.WithRequestID(ctx, id)
		start := time.Now()

		resp, err := handler(ctx, req)

		common.Logger(ctx, logger).Info("grpc.call",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
