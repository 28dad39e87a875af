// Package download implements the HTTP transfer engine shared by the
// runtime installer and the CLI.
//
// A Client retries individual URLs with backoff and fails over across
// mirror candidates. Files are streamed to a ".pending" sibling of the
// destination, checksum-validated and only then renamed into place, so
// interrupted transfers never leave partial files where complete ones
// are expected.
package download
