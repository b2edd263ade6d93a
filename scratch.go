package pdfembed

import (
	"fmt"
	"os"
	"path/filepath"
)

// scratchRootName is the stable shared directory under the OS temp dir that
// holds all per-run scratch directories.
const scratchRootName = "pdfembed"

// CreateScratchRoot creates a fresh, uniquely named scratch directory for
// one export run. Concurrent runs each get their own directory and cannot
// collide. Pass the returned path to ReplaceEmbeds and hand it to RemoveAll
// once the export has consumed the images.
func CreateScratchRoot() (string, error) {
	shared := filepath.Join(os.TempDir(), scratchRootName)
	if err := os.MkdirAll(shared, 0o750); err != nil {
		return "", fmt.Errorf("%w: %v", ErrScratchRoot, err)
	}

	dir, err := os.MkdirTemp(shared, "run-")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrScratchRoot, err)
	}
	return dir, nil
}

// RemoveAll recursively removes every given path, independently and
// best-effort. Individual failures are swallowed: cleanup must never block
// or fail the caller's own completion.
func RemoveAll(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		_ = os.RemoveAll(p)
	}
}
