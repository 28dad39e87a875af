package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Koora7334/minecraft-launcher-core/internal/download"
	"github.com/Koora7334/minecraft-launcher-core/internal/logger"
	"github.com/Koora7334/minecraft-launcher-core/internal/service/javaruntime"
)

var (
	errRuntimeBusy         = errors.New("runtime executables are running, stop them or pass --force")
	errDestinationRequired = errors.New("destination is not set, pass it as an argument or set it in the configuration")
	errVerificationFailed  = errors.New("runtime verification failed")
)

var (
	// runtimeChannel is the runtime channel to resolve, e.g. java-runtime-beta.
	runtimeChannel string
	// runtimeOS overrides the detected operating system.
	runtimeOS string
	// runtimeArch overrides the detected architecture.
	runtimeArch string
	// runtimeIndexURL overrides the runtime index location.
	runtimeIndexURL string
	// runtimeAPIHosts lists mirror hosts tried before the original.
	runtimeAPIHosts []string
	// runtimeLZMA prefers compressed downloads when available.
	runtimeLZMA bool
	// runtimeConcurrency bounds parallel install operations.
	runtimeConcurrency int
	// runtimeForce skips the running-executables preflight check.
	runtimeForce bool
	// runtimeJSON switches resolve output to the full manifest document.
	runtimeJSON bool

	// runtimeCmd groups the Java runtime operations.
	runtimeCmd = &cobra.Command{
		Use:   "runtime",
		Short: "Resolve, install and verify Mojang Java runtimes",
	}

	// runtimeResolveCmd prints the runtime build the current settings
	// would install.
	runtimeResolveCmd = &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the runtime manifest for a platform and channel",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			manifest, err := javaruntime.Resolve(ctx, newResolveOptions())
			if err != nil {
				return err
			}

			if runtimeJSON {
				contents, err := json.MarshalIndent(manifest, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal manifest: %w", err)
				}

				fmt.Println(string(contents))

				return nil
			}

			printManifestSummary(manifest)

			return nil
		},
	}

	// runtimeInstallCmd downloads and installs a runtime build.
	runtimeInstallCmd = &cobra.Command{
		Use:   "install [destination]",
		Short: "Download and install a Java runtime build",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			destination := cfg.Destination
			if len(args) > 0 {
				destination = args[0]
			}

			if destination == "" {
				return errDestinationRequired
			}

			resolveOptions := newResolveOptions()

			manifest, err := javaruntime.Resolve(ctx, resolveOptions)
			if err != nil {
				return err
			}

			if !runtimeForce {
				if err = checkRuntimeNotRunning(ctx, manifest); err != nil {
					return err
				}
			}

			if !cmd.Flags().Changed("lzma") {
				runtimeLZMA = cfg.LZMA
			}

			concurrency := runtimeConcurrency
			if concurrency <= 0 {
				concurrency = cfg.Concurrency
			}

			options := &javaruntime.InstallOptions{
				ResolveOptions: *resolveOptions,
				Manifest:       manifest,
				Destination:    destination,
				LZMA:           runtimeLZMA,
				OnProgress:     newProgressLogger(ctx),
				Concurrency:    concurrency,
			}

			if err = javaruntime.Install(ctx, options); err != nil {
				return err
			}

			logger.InfoKV(ctx, "runtime installed",
				"version", manifest.Version.Name,
				"channel", manifest.Target,
				"destination", destination,
			)

			return nil
		},
	}

	// runtimeVerifyCmd checks an installed runtime against its manifest.
	runtimeVerifyCmd = &cobra.Command{
		Use:   "verify <destination>",
		Short: "Verify an installed runtime against its manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			manifest, err := javaruntime.Resolve(ctx, newResolveOptions())
			if err != nil {
				return err
			}

			issues, err := javaruntime.Verify(ctx, manifest, args[0])
			if err != nil {
				return err
			}

			if len(issues) == 0 {
				logger.InfoKV(ctx, "runtime verified",
					"version", manifest.Version.Name,
					"destination", args[0],
				)

				return nil
			}

			for _, issue := range issues {
				logger.WarnKV(ctx, "runtime file failed verification",
					"path", issue.Path,
					"cause", issue.Cause.Error(),
				)
			}

			return fmt.Errorf("%d of %d entries: %w", len(issues), len(manifest.Files), errVerificationFailed)
		},
	}
)

// newResolveOptions merges resolve flags over the loaded configuration.
// An empty platform lets the resolver detect the current one, a partial
// --os or --arch override starts from the detected platform.
func newResolveOptions() *javaruntime.ResolveOptions {
	options := &javaruntime.ResolveOptions{
		IndexURL: runtimeIndexURL,
		Channel:  runtimeChannel,
		APIHosts: runtimeAPIHosts,
		Client:   newDownloadClient(),
	}

	if options.IndexURL == "" {
		options.IndexURL = cfg.IndexURL
	}

	if options.Channel == "" {
		options.Channel = cfg.Channel
	}

	if len(options.APIHosts) == 0 {
		options.APIHosts = cfg.APIHosts
	}

	if runtimeOS != "" || runtimeArch != "" {
		platform := javaruntime.CurrentPlatform()

		if runtimeOS != "" {
			platform.OS = runtimeOS
		}

		if runtimeArch != "" {
			platform.Arch = runtimeArch
		}

		options.Platform = platform
	}

	return options
}

// checkRuntimeNotRunning refuses to replace files of a runtime that has
// processes running out of it.
func checkRuntimeNotRunning(ctx context.Context, manifest *javaruntime.Manifest) error {
	processes, err := javaruntime.RunningExecutables(manifest)
	if err != nil {
		return err
	}

	if len(processes) == 0 {
		return nil
	}

	for _, process := range processes {
		logger.WarnKV(ctx, "runtime executable is running",
			"pid", process.Pid(),
			"executable", process.Executable(),
		)
	}

	return errRuntimeBusy
}

// newProgressLogger returns an install progress callback that logs a
// line whenever a file crosses a whole-percent boundary.
func newProgressLogger(ctx context.Context) javaruntime.ProgressFunc {
	var (
		mu   sync.Mutex
		seen = make(map[string]int64)
	)

	return func(path string, event download.ProgressEvent) {
		if event.Total <= 0 {
			return
		}

		percent := event.Written * 100 / event.Total

		mu.Lock()

		previous, ok := seen[path]
		if ok && previous == percent {
			mu.Unlock()
			return
		}

		seen[path] = percent

		mu.Unlock()

		logger.DebugKV(ctx, "downloading runtime file",
			"path", path,
			"percent", percent,
		)
	}
}

// printManifestSummary writes a short human-readable description of a
// resolved manifest to stdout.
func printManifestSummary(manifest *javaruntime.Manifest) {
	var files, directories, links, executables int

	for _, entry := range manifest.Files {
		switch entry.Type {
		case javaruntime.EntryTypeFile:
			files++

			if entry.Executable {
				executables++
			}
		case javaruntime.EntryTypeDirectory:
			directories++
		case javaruntime.EntryTypeLink:
			links++
		}
	}

	fmt.Printf("%s %s (released %s)\n", manifest.Target, manifest.Version.Name, manifest.Version.Released)
	fmt.Printf("%d files (%d executable), %d directories, %d links\n",
		files, executables, directories, links)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	addResolveFlags(runtimeResolveCmd)
	runtimeResolveCmd.Flags().BoolVar(&runtimeJSON, "json", false, "print the full manifest as JSON")

	addResolveFlags(runtimeInstallCmd)
	runtimeInstallCmd.Flags().BoolVar(&runtimeLZMA, "lzma", false, "prefer LZMA-compressed downloads")
	runtimeInstallCmd.Flags().IntVar(&runtimeConcurrency, "concurrency", 0, "parallel download limit")
	runtimeInstallCmd.Flags().BoolVar(&runtimeForce, "force", false, "install even when runtime executables are running")

	addResolveFlags(runtimeVerifyCmd)

	runtimeCmd.AddCommand(runtimeResolveCmd, runtimeInstallCmd, runtimeVerifyCmd)
}

// addResolveFlags registers the flags shared by every command that
// resolves a runtime manifest.
func addResolveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runtimeChannel, "channel", "",
		"runtime channel (default "+javaruntime.DefaultChannel+")")
	cmd.Flags().StringVar(&runtimeOS, "os", "", "target operating system (windows, osx, linux)")
	cmd.Flags().StringVar(&runtimeArch, "arch", "", "target architecture (x64, x86)")
	cmd.Flags().StringVar(&runtimeIndexURL, "index-url", "", "runtime index URL override")
	cmd.Flags().StringSliceVar(&runtimeAPIHosts, "api-host", nil, "mirror host tried before the original (repeatable)")
}
