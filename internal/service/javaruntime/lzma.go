package javaruntime

import (
	"bufio"
	"crypto"
	_ "crypto/sha1" // registers SHA-1 for checksum verification during apply
	"encoding/hex"
	"fmt"
	"os"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/ulikunitz/xz/lzma"
)

// unpackLZMA decompresses src into dst, verifying the decompressed
// content against the manifest's SHA-1 of the raw file. The compressed
// file is removed on success.
func unpackLZMA(src, dst string, mode os.FileMode, sha1Hex string) error {
	var (
		checksum []byte
		err      error
	)

	if sha1Hex != "" {
		if checksum, err = hex.DecodeString(sha1Hex); err != nil {
			return fmt.Errorf("decode checksum: %w", err)
		}
	}

	file, err := os.Open(src) //nolint:gosec // Paths come from the install plan, not user input.
	if err != nil {
		return fmt.Errorf("open compressed file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	reader, err := lzma.NewReader(bufio.NewReader(file))
	if err != nil {
		return fmt.Errorf("read lzma header: %w", err)
	}

	// go-update swaps an existing target, so make sure one is there.
	if _, err = os.Stat(dst); err != nil && os.IsNotExist(err) {
		var placeholder *os.File

		if placeholder, err = os.Create(dst); err != nil { //nolint:gosec // Same as above.
			return fmt.Errorf("create target file: %w", err)
		}

		_ = placeholder.Close()
	}

	options := &goupdate.Options{
		TargetPath: dst,
		TargetMode: mode,
		Checksum:   checksum,
		Hash:       crypto.SHA1,
	}

	if err = goupdate.Apply(reader, *options); err != nil {
		return fmt.Errorf("apply decompressed file: %w", err)
	}

	for _, leftover := range []string{dst + ".old", src} {
		if _, err = os.Stat(leftover); err == nil {
			_ = os.Remove(leftover)
		}
	}

	return nil
}
