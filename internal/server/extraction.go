// Package server exposes the extraction pipeline over gRPC.
package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/cibil-extractor/constants"
	"github.com/joseph-ayodele/cibil-extractor/internal/common"
	"github.com/joseph-ayodele/cibil-extractor/internal/export"
	"github.com/joseph-ayodele/cibil-extractor/internal/pipeline"
)

// Metadata keys understood by the service.
const (
	MDForce       = "x-cibil-force"        // "true" reprocesses already parsed content
	MDSourceName  = "x-cibil-source-name"  // name recorded for ExtractText runs
	MDFileName    = "x-cibil-file-name"    // response header set by ExportRun
	MDContentType = "x-cibil-content-type" // response header set by ExportRun
)

// DefaultSourceName names runs created from inline text.
const DefaultSourceName = "inline.txt"

// Processor is the part of the pipeline the service drives.
type Processor interface {
	ProcessFile(ctx context.Context, path string, opts pipeline.Options) (pipeline.Outcome, error)
	ProcessText(ctx context.Context, name, text string, opts pipeline.Options) (pipeline.Outcome, error)
}

// Exporter renders stored runs.
type Exporter interface {
	Export(ctx context.Context, runID uuid.UUID, format constants.ExportFormat) (export.File, error)
}

type ExtractionService struct {
	proc     Processor
	exporter Exporter
	logger   *slog.Logger
}

var _ ExtractionServer = (*ExtractionService)(nil)

func NewExtractionService(proc Processor, exporter Exporter, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{proc: proc, exporter: exporter, logger: logger}
}

func (s *ExtractionService) ExtractText(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	text := req.GetValue()
	if strings.TrimSpace(text) == "" {
		return nil, common.InvalidArgumentError("text is required")
	}
	name := firstMD(ctx, MDSourceName)
	if name == "" {
		name = DefaultSourceName
	}

	out, err := s.proc.ProcessText(ctx, name, text, optionsFromMD(ctx))
	if err != nil {
		common.Logger(ctx, s.logger).Warn("grpc.extract_text.failed", "source", name, "err", err)
		return nil, toStatus(err)
	}
	return outcomeStruct(out)
}

func (s *ExtractionService) ExtractFile(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	path := strings.TrimSpace(req.GetValue())
	if path == "" {
		return nil, common.InvalidArgumentError("path is required")
	}

	out, err := s.proc.ProcessFile(ctx, path, optionsFromMD(ctx))
	if err != nil {
		common.Logger(ctx, s.logger).Warn("grpc.extract_file.failed", "path", path, "err", err)
		return nil, toStatus(err)
	}
	return outcomeStruct(out)
}

func (s *ExtractionService) ExportRun(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	fields := req.GetFields()
	runID := strings.TrimSpace(fields["run_id"].GetStringValue())
	format := strings.TrimSpace(fields["format"].GetStringValue())

	v := common.NewValidator().
		Field("run_id", runID, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	if format == "" {
		format = string(constants.ExportCSV)
	}
	f, ok := constants.ParseExportFormat(format)
	if !ok {
		return nil, common.InvalidArgumentErrorf("format must be one of %s", strings.Join(constants.ExportFormats, ", "))
	}

	file, err := s.exporter.Export(ctx, uuid.MustParse(runID), f)
	if err != nil {
		common.Logger(ctx, s.logger).Warn("grpc.export_run.failed", "run_id", runID, "format", f, "err", err)
		return nil, toStatus(err)
	}
	if err := grpc.SetHeader(ctx, metadata.Pairs(MDFileName, file.Name, MDContentType, file.ContentType)); err != nil {
		s.logger.Debug("grpc.export_run.header", "err", err)
	}
	return wrapperspb.Bytes(file.Data), nil
}

func firstMD(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(key); len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

func optionsFromMD(ctx context.Context) pipeline.Options {
	return pipeline.Options{Force: strings.EqualFold(firstMD(ctx, MDForce), "true")}
}
