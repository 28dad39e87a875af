package javaruntime

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/Koora7334/minecraft-launcher-core/internal/download"
)

// errNotADirectory is reported when a directory entry is shadowed by a file.
var errNotADirectory = errors.New("not a directory")

// Issue is one verification finding.
type Issue struct {
	// Path is the manifest-relative location of the offending entry.
	Path string
	// Cause explains what is wrong with it.
	Cause error
}

// Verify checks an installed runtime tree against its manifest.
//
// File entries are hashed and compared with their manifest SHA-1,
// directory entries must exist as directories. Link entries are
// best-effort at install time and are not checked. The returned slice
// lists every missing or corrupt entry in path order; an installation
// is intact when it is empty.
func Verify(ctx context.Context, manifest *Manifest, destination string) ([]Issue, error) {
	var issues []Issue

	for _, path := range slices.Sorted(maps.Keys(manifest.Files)) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry := manifest.Files[path]
		location := filepath.Join(destination, filepath.FromSlash(path))

		switch entry.Type {
		case EntryTypeFile:
			if entry.Downloads == nil || entry.Downloads.Raw == nil {
				continue
			}

			validator := download.NewChecksumValidator(download.AlgorithmSHA1, entry.Downloads.Raw.SHA1)
			if err := validator.Validate(location); err != nil {
				issues = append(issues, Issue{Path: path, Cause: err})
			}
		case EntryTypeDirectory:
			info, err := os.Stat(location)
			if err != nil {
				issues = append(issues, Issue{Path: path, Cause: err})
				continue
			}

			if !info.IsDir() {
				issues = append(issues, Issue{Path: path, Cause: errNotADirectory})
			}
		}
	}

	return issues, nil
}
