package download

import (
	"crypto/sha1" //nolint:gosec // SHA-1 is the digest the runtime manifests declare.
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Supported checksum algorithm names.
const (
	AlgorithmSHA1   = "sha1"
	AlgorithmSHA256 = "sha256"
	AlgorithmSHA512 = "sha512"
)

var (
	// ErrChecksumMismatch is returned when a file digest does not match
	// the expected value. Callers may test for it with errors.Is.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	errUnsupportedAlgorithm = errors.New("unsupported checksum algorithm")
	errEmptyChecksum        = errors.New("empty checksum")
)

// Validator checks a downloaded file before it is moved into place.
type Validator interface {
	Validate(path string) error
}

// ChecksumValidator verifies a file digest against an expected hex string.
type ChecksumValidator struct {
	algorithm string
	expected  string
}

// NewChecksumValidator creates a validator for the given algorithm
// ("sha1", "sha256" or "sha512") and expected hex digest.
func NewChecksumValidator(algorithm, expected string) *ChecksumValidator {
	return &ChecksumValidator{
		algorithm: strings.ToLower(algorithm),
		expected:  expected,
	}
}

// Validate hashes the file and compares the digest, case-insensitively.
func (v *ChecksumValidator) Validate(path string) error {
	if v.expected == "" {
		return fmt.Errorf("%s: %w", filepath.Base(path), errEmptyChecksum)
	}

	hasher, err := v.newHasher()
	if err != nil {
		return err
	}

	file, err := os.Open(path) //nolint:gosec // Paths come from the install plan, not user input.
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	if _, err = io.Copy(hasher, file); err != nil {
		return fmt.Errorf("hash file: %w", err)
	}

	actual := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(actual, v.expected) {
		return fmt.Errorf("%s of %s is %s, want %s: %w",
			v.algorithm, filepath.Base(path), actual, v.expected, ErrChecksumMismatch)
	}

	return nil
}

func (v *ChecksumValidator) newHasher() (hash.Hash, error) {
	switch v.algorithm {
	case AlgorithmSHA1:
		return sha1.New(), nil //nolint:gosec // See the import note.
	case AlgorithmSHA256:
		return sha256.New(), nil
	case AlgorithmSHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("%q: %w", v.algorithm, errUnsupportedAlgorithm)
	}
}
