// Package javaruntime resolves and installs the Java runtimes Mojang
// publishes for the Minecraft launcher.
//
// A runtime is described by two documents: the index, which lists
// available builds per platform bucket and channel, and the per-build
// manifest, which lists every file, directory and link of the runtime
// tree. Resolve turns a platform and channel into a manifest, Install
// materializes a manifest under a destination directory with checksum
// validation, optional LZMA transfer compression and bounded
// concurrency, and Verify re-checks an installed tree afterwards.
package javaruntime
