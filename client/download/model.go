package download

import (
	"errors"
	"fmt"
	"io/fs"
)

// defaultPerm is applied to written files unless overridden by WithPerm.
const defaultPerm fs.FileMode = 0o644

var (
	ErrSizeMismatch     = errors.New("size mismatch")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrWriteCancelled   = errors.New("write cancelled")
)

type Error struct {
	Path   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Path, e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}
