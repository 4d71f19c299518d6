package server

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/cibil-extractor/internal/export"
	"github.com/joseph-ayodele/cibil-extractor/internal/pipeline"
)

// outcomeStruct converts a pipeline outcome into the response Struct.
func outcomeStruct(out pipeline.Outcome) (*structpb.Struct, error) {
	records := export.Records(out.Accounts)
	accounts := make([]any, 0, len(records))
	for _, r := range records {
		accounts = append(accounts, r)
	}
	warnings := make([]any, 0, len(out.Warnings))
	for _, w := range out.Warnings {
		warnings = append(warnings, w)
	}

	s, err := structpb.NewStruct(map[string]any{
		"run_id":       out.RunID.String(),
		"source_name":  out.SourceName,
		"method":       out.Method,
		"pages":        out.Pages,
		"deduplicated": out.Deduplicated,
		"warnings":     warnings,
		"accounts":     accounts,
		"stats": map[string]any{
			"blocks":        out.Stats.Blocks,
			"accepted":      out.Stats.Accepted,
			"rejected":      out.Stats.Rejected,
			"closed_found":  out.Stats.Boundary.Found,
			"closed_offset": out.Stats.Boundary.Offset,
		},
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return s, nil
}
