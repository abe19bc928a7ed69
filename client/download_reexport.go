package client

import (
	"hash"
	"io/fs"

	"github.com/adamwoolhether/datasvc/client/download"
)

// --------------------------------------------------------------------
// Type aliases: re-export user-facing types from [download].
// --------------------------------------------------------------------

type (
	// DownloadOption configures [File.Save].
	DownloadOption = download.Option

	// DownloadError wraps a sentinel error with the path and detail.
	DownloadError = download.Error
)

// --------------------------------------------------------------------
// Sentinel errors
// --------------------------------------------------------------------

var (
	// ErrSizeMismatch indicates the byte count written did not match the payload.
	ErrSizeMismatch = download.ErrSizeMismatch

	// ErrChecksumMismatch indicates the file checksum did not match the expected value.
	ErrChecksumMismatch = download.ErrChecksumMismatch

	// ErrWriteCancelled indicates the save was cancelled via context.
	ErrWriteCancelled = download.ErrWriteCancelled
)

// --------------------------------------------------------------------
// Download option forwarding functions
// --------------------------------------------------------------------

// WithChecksum enables checksum validation of the saved file.
// h is a [hash.Hash] instance (e.g. sha256.New()), and expected is the
// hex-encoded expected checksum string.
func WithChecksum(h hash.Hash, expected string) DownloadOption {
	return download.WithChecksum(h, expected)
}

// WithSkipExisting causes a save to return nil immediately when
// the destination file already exists.
func WithSkipExisting() DownloadOption { return download.WithSkipExisting() }

// WithPerm sets the permission bits of the saved file. Defaults to 0644.
func WithPerm(perm fs.FileMode) DownloadOption { return download.WithPerm(perm) }
