// Package session implements persistence for the Yggdrasil login
// session.
//
// The FileRepository stores and loads the session as JSON on disk and
// exposes a Repository interface that the CLI commands depend on.
package session
