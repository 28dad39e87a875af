package javaruntime

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/multierr"

	"github.com/Koora7334/minecraft-launcher-core/internal/batch"
	"github.com/Koora7334/minecraft-launcher-core/internal/download"
	"github.com/Koora7334/minecraft-launcher-core/internal/fsutil"
	"github.com/Koora7334/minecraft-launcher-core/internal/logger"
)

// lzmaSuffix is appended to a file's destination when the compressed
// variant is downloaded.
const lzmaSuffix = ".lzma"

// File modes for installed entries.
const (
	executableMode = os.FileMode(0o755)
	regularMode    = os.FileMode(0o644)
)

var (
	errDestinationRequired = errors.New("destination directory is required")
	errEntryHasNoDownload  = errors.New("file entry has no raw download descriptor")
)

// ProgressFunc receives per-chunk transfer events for a manifest path.
type ProgressFunc func(path string, event download.ProgressEvent)

// InstallOptions controls runtime installation. Destination is the only
// required field.
type InstallOptions struct {
	ResolveOptions

	// Manifest to materialize. When nil it is resolved first using the
	// embedded ResolveOptions.
	Manifest *Manifest
	// Destination is the directory the runtime tree is written under.
	Destination string
	// LZMA downloads the compressed variant of files that offer one.
	LZMA bool
	// Unpack decompresses src into dst after a compressed download.
	// When nil a built-in LZMA decoder is used.
	Unpack func(src, dst string) error
	// NewValidator builds the content check for a file. When nil each
	// file is checked against its manifest SHA-1.
	NewValidator func(algorithm, hash string) download.Validator
	// OnProgress, when set, receives transfer events for every file.
	OnProgress ProgressFunc
	// Concurrency caps in-flight operations per batch.
	Concurrency int
}

// Install materializes a runtime manifest under the destination
// directory.
//
// Files are fetched first as one concurrent batch. Directories and
// links form a second batch that starts only after every file settles,
// links may point at files and must not race them. A failing entry
// never stops its batch; Install returns a single error aggregating
// every failure from both batches.
func Install(ctx context.Context, opts *InstallOptions) error {
	if opts == nil || opts.Destination == "" {
		return errDestinationRequired
	}

	manifest := opts.Manifest
	if manifest == nil {
		var err error
		if manifest, err = Resolve(ctx, &opts.ResolveOptions); err != nil {
			return err
		}
	}

	client := opts.Client
	if client == nil {
		client = download.NewClient()
	}

	files := make([]batch.Item, 0, len(manifest.Files))
	auxiliary := make([]batch.Item, 0, len(manifest.Files))

	for _, path := range slices.Sorted(maps.Keys(manifest.Files)) {
		entry := manifest.Files[path]

		switch entry.Type {
		case EntryTypeFile:
			files = append(files, batch.Item{
				Label: path,
				Run:   installFileFunc(client, path, entry, opts),
			})
		case EntryTypeDirectory, EntryTypeLink:
			auxiliary = append(auxiliary, batch.Item{
				Label: path,
				Run:   installAuxiliaryFunc(path, entry, opts.Destination),
			})
		default:
			logger.WarnKV(ctx, "skipping unknown manifest entry",
				"path", path,
				"type", entry.Type)
		}
	}

	logger.InfoKV(ctx, "installing java runtime",
		"target", manifest.Target,
		"version", manifest.Version.Name,
		"destination", opts.Destination,
		"files", len(files),
		"auxiliary", len(auxiliary))

	limit := int64(opts.Concurrency)

	err := batch.Run(ctx, "install runtime files", limit, files)
	err = multierr.Append(err, batch.Run(ctx, "install runtime directories and links", limit, auxiliary))

	return err
}

// installFileFunc builds the batch task that downloads one file entry
// and, when the compressed variant was chosen, unpacks it.
func installFileFunc(
	client *download.Client,
	path string,
	entry Entry,
	opts *InstallOptions,
) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if entry.Downloads == nil || entry.Downloads.Raw == nil {
			return errEntryHasNoDownload
		}

		descriptor := entry.Downloads.Raw
		compressed := false

		if opts.LZMA && entry.Downloads.LZMA != nil {
			descriptor = entry.Downloads.LZMA
			compressed = true
		}

		mode := regularMode
		if entry.Executable {
			mode = executableMode
		}

		destination := filepath.Join(opts.Destination, filepath.FromSlash(path))

		target := destination
		if compressed {
			target += lzmaSuffix
		}

		var validator download.Validator
		if opts.NewValidator != nil {
			validator = opts.NewValidator(download.AlgorithmSHA1, descriptor.SHA1)
		} else {
			validator = download.NewChecksumValidator(download.AlgorithmSHA1, descriptor.SHA1)
		}

		var progress download.ProgressFunc
		if opts.OnProgress != nil {
			progress = func(event download.ProgressEvent) {
				opts.OnProgress(path, event)
			}
		}

		err := client.Download(ctx, &download.Request{
			URLs:        rewriteURLs(descriptor.URL, opts.APIHosts),
			Destination: target,
			Validator:   validator,
			Mode:        mode,
			Progress:    progress,
		})
		if err != nil {
			return err
		}

		if !compressed {
			return nil
		}

		if opts.Unpack != nil {
			if err = opts.Unpack(target, destination); err != nil {
				return fmt.Errorf("unpack %s: %w", filepath.Base(target), err)
			}

			return nil
		}

		return unpackLZMA(target, destination, mode, entry.Downloads.Raw.SHA1)
	}
}

// installAuxiliaryFunc builds the batch task for a directory or link
// entry. Link creation is best-effort, an existing link or a missing
// target is not an error.
func installAuxiliaryFunc(path string, entry Entry, destination string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		location := filepath.Join(destination, filepath.FromSlash(path))

		switch entry.Type {
		case EntryTypeDirectory:
			return fsutil.EnsureDir(location)
		case EntryTypeLink:
			if err := fsutil.Symlink(filepath.FromSlash(entry.Target), location); err != nil {
				logger.WarnKV(ctx, "skipping runtime link",
					"path", path,
					"target", entry.Target,
					"error", err)
			}

			return nil
		default:
			return nil
		}
	}
}
