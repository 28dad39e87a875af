// Package fsutil holds the small filesystem helpers shared by the
// installer and download engine: recursive directory creation and
// symbolic link creation with parent handling.
package fsutil
