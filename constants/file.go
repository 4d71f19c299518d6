package constants

import "strings"

// Source formats accepted by the text extraction stage.
const (
	PDF  = "PDF"
	TEXT = "TEXT"
)

// AllowedExtensions holds the default allowed file extensions for report ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat returns the source format for a normalized extension, or "".
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt":
		return TEXT
	default:
		return ""
	}
}

// ExportFormat is a tabular/serialized output format for account records.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
	ExportJSON ExportFormat = "json"
)

// ExportFormats lists the supported export formats.
var ExportFormats = []string{string(ExportCSV), string(ExportXLSX), string(ExportJSON)}

// ParseExportFormat accepts "csv", "xlsx"/"excel" and "json" (case-insensitive).
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return ExportCSV, true
	case "xlsx", "excel":
		return ExportXLSX, true
	case "json":
		return ExportJSON, true
	}
	return "", false
}

// FileName is the download name used for an export in this format.
func (f ExportFormat) FileName() string {
	return "cibil_accounts." + string(f)
}

// ContentType is the MIME type served with an export in this format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportCSV:
		return "text/csv"
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportJSON:
		return "application/json"
	}
	return "application/octet-stream"
}
