package javaruntime

import (
	"fmt"
	"path/filepath"
	"strings"

	ps "github.com/mitchellh/go-ps"
)

// RunningExecutables reports processes whose executable name matches an
// executable entry of the manifest, for example a java process started
// from a previous installation. Overwriting a running executable fails
// on some platforms, so installers check this before touching the tree.
func RunningExecutables(manifest *Manifest) ([]ps.Process, error) {
	names := make(map[string]struct{})

	for path, entry := range manifest.Files {
		if entry.Type == EntryTypeFile && entry.Executable {
			name := filepath.Base(filepath.FromSlash(path))
			names[strings.ToLower(name)] = struct{}{}
		}
	}

	if len(names) == 0 {
		return nil, nil
	}

	processes, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	var matches []ps.Process

	for _, process := range processes {
		if _, ok := names[strings.ToLower(process.Executable())]; ok {
			matches = append(matches, process)
		}
	}

	return matches, nil
}
