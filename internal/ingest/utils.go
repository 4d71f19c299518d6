package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/cibil-extractor/constants"
)

// extSet builds a lookup of normalized extensions, defaulting to AllowedExtensions.
func extSet(includeExts []string) map[string]struct{} {
	if len(includeExts) == 0 {
		return constants.AllowedExtensions
	}
	exts := map[string]struct{}{}
	for _, e := range includeExts {
		if e = constants.NormalizeExt(e); e != "" {
			exts[e] = struct{}{}
		}
	}
	return exts
}

func allowed(path string, exts map[string]struct{}) bool {
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
