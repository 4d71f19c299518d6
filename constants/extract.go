package constants

import "strings"

// ExtractMethod selects how text is pulled out of a PDF.
type ExtractMethod string

const (
	ExtractAuto      ExtractMethod = "auto"      // native, then pdftotext, then ocr
	ExtractNative    ExtractMethod = "native"    // in-process PDF content streams
	ExtractPdftotext ExtractMethod = "pdftotext" // poppler pdftotext
	ExtractOCR       ExtractMethod = "ocr"       // pdftoppm + tesseract
	ExtractPlain     ExtractMethod = "plain"     // .txt input, read as-is
)

// ParseExtractMethod maps a config value to an ExtractMethod. Empty means auto.
func ParseExtractMethod(s string) (ExtractMethod, bool) {
	switch m := ExtractMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ExtractAuto, true
	case ExtractAuto, ExtractNative, ExtractPdftotext, ExtractOCR:
		return m, true
	}
	return "", false
}
