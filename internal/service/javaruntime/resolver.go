package javaruntime

import (
	"context"
	"errors"
	"fmt"

	"github.com/Koora7334/minecraft-launcher-core/internal/download"
	"github.com/Koora7334/minecraft-launcher-core/internal/logger"
)

// ErrNoRuntimeTarget is returned when the requested channel has no
// builds for the resolved platform bucket.
var ErrNoRuntimeTarget = errors.New("no runtime target available")

// ResolveOptions controls manifest resolution. The zero value resolves
// the default channel for the current platform from Mojang's index.
type ResolveOptions struct {
	// Index is a pre-fetched runtime index. When set, no index fetch
	// happens and IndexURL is ignored.
	Index Index
	// IndexURL overrides the default index location.
	IndexURL string
	// Platform overrides platform auto-detection.
	Platform Platform
	// Channel picks the runtime lineage, DefaultChannel when empty.
	Channel string
	// APIHosts rewrites index and manifest hostnames. Resolution uses
	// the first rewritten candidate only.
	APIHosts []string
	// Client performs the HTTP fetches. A default client is created
	// when nil.
	Client *download.Client
}

// Resolve produces the runtime manifest for a platform and channel.
//
// The index lists builds per platform bucket and channel in priority
// order; the first build wins. The manifest's Target is always the
// requested channel, the value the server declares per build is
// deliberately ignored.
func Resolve(ctx context.Context, opts *ResolveOptions) (*Manifest, error) {
	if opts == nil {
		opts = &ResolveOptions{}
	}

	client := opts.Client
	if client == nil {
		client = download.NewClient()
	}

	platform := opts.Platform
	if platform.OS == "" {
		platform = CurrentPlatform()
	}

	bucket, err := platform.Bucket()
	if err != nil {
		return nil, err
	}

	channel := opts.Channel
	if channel == "" {
		channel = DefaultChannel
	}

	index := opts.Index
	if index == nil {
		indexURL := opts.IndexURL
		if indexURL == "" {
			indexURL = DefaultIndexURL
		}

		indexURL = rewriteURLs(indexURL, opts.APIHosts)[0]

		logger.DebugKV(ctx, "fetching runtime index", "url", indexURL)

		if err = client.GetJSON(ctx, indexURL, &index); err != nil {
			return nil, fmt.Errorf("fetch runtime index: %w", err)
		}
	}

	targets := index[bucket][channel]
	if len(targets) == 0 {
		return nil, fmt.Errorf("%s has no %q builds: %w", bucket, channel, ErrNoRuntimeTarget)
	}

	target := targets[0]
	manifestURL := rewriteURLs(target.Manifest.URL, opts.APIHosts)[0]

	logger.DebugKV(ctx, "fetching runtime manifest",
		"url", manifestURL,
		"version", target.Version.Name)

	var fetched struct {
		Files map[string]Entry `json:"files"`
	}

	if err = client.GetJSON(ctx, manifestURL, &fetched); err != nil {
		return nil, fmt.Errorf("fetch runtime manifest: %w", err)
	}

	return &Manifest{
		Target:  channel,
		Version: target.Version,
		Files:   fetched.Files,
	}, nil
}
