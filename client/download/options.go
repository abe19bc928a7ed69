package download

import (
	"errors"
	"hash"
	"io/fs"
)

// Option defines optional settings for writing a payload to disk.
//
// WithChecksum enables checksum validation of the written bytes.
// h is a hash.Hash instance (e.g. sha256.New()), and expected is the
// hex-encoded expected checksum string.
//
// WithSkipExisting causes Write to return nil immediately when
// the destination file already exists.
//
// WithPerm sets the permission bits of the final file.
type Option func(*options) error

type options struct {
	checksum     *checksumVerifier
	skipExisting bool
	perm         fs.FileMode
}

func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.checksum = &checksumVerifier{hash: h, expected: expected}
		return nil
	}
}

func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}

func WithPerm(perm fs.FileMode) Option {
	return func(opts *options) error {
		if perm&^fs.ModePerm != 0 {
			return errors.New("perm must only contain permission bits")
		}
		opts.perm = perm
		return nil
	}
}
