package client

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/adamwoolhether/datasvc/client/download"
)

// File is a response body paired with the filename the server suggested.
type File struct {
	Filename    string
	ContentType string
	Blob        []byte

	logger *slog.Logger
	opener func(path string) error
}

// Save writes the payload to destPath atomically.
func (f *File) Save(ctx context.Context, destPath string, opts ...DownloadOption) error {
	if err := download.Write(ctx, bytes.NewReader(f.Blob), int64(len(f.Blob)), destPath, f.log(), opts...); err != nil {
		return fmt.Errorf("saving %s: %w", f.Filename, err)
	}

	return nil
}

// Open saves the payload under its filename in a fresh temp directory
// and hands it to the platform viewer. It returns the saved path.
func (f *File) Open(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "datasvc-open-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}

	path := filepath.Join(dir, safeName(f.Filename))
	if err := f.Save(ctx, path); err != nil {
		return "", err
	}

	if f.opener == nil {
		return path, fmt.Errorf("opening %s: no opener configured", path)
	}
	if err := f.opener(path); err != nil {
		return path, fmt.Errorf("opening %s: %w", path, err)
	}

	return path, nil
}

func (f *File) log() *slog.Logger {
	if f.logger == nil {
		return slog.Default()
	}
	return f.logger
}

// filenameFrom extracts the filename parameter of a Content-Disposition
// header. Headers mime cannot parse fall back to the raw text following
// "filename=".
func filenameFrom(disposition string) string {
	if disposition == "" {
		return defaultFilename
	}

	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}

	if _, after, found := strings.Cut(disposition, "filename="); found && after != "" {
		return after
	}

	return defaultFilename
}

// contentTypeOf trusts the response Content-Type unless it is missing or
// the generic octet-stream, in which case the payload is sniffed.
func contentTypeOf(header string, blob []byte) string {
	if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "application/octet-stream" {
		return header
	}

	return mimetype.Detect(blob).String()
}

// safeName reduces a server supplied filename to a single path element.
func safeName(name string) string {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." || name == "" {
		return defaultFilename
	}

	return name
}
