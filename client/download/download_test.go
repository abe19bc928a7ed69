package download_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/datasvc/client/download"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWrite(t *testing.T) {
	payload := []byte("quarterly numbers")
	sum := sha256.Sum256(payload)
	goodSum := hex.EncodeToString(sum[:])

	testCases := map[string]struct {
		size   int64
		opts   []download.Option
		expErr error
	}{
		"basic":         {size: int64(len(payload))},
		"unknownSize":   {size: -1},
		"checksumPass":  {size: int64(len(payload)), opts: []download.Option{download.WithChecksum(sha256.New(), goodSum)}},
		"checksumUpper": {size: int64(len(payload)), opts: []download.Option{download.WithChecksum(sha256.New(), strings.ToUpper(goodSum))}},
		"checksumFail":  {size: int64(len(payload)), opts: []download.Option{download.WithChecksum(sha256.New(), "deadbeef")}, expErr: download.ErrChecksumMismatch},
		"sizeMismatch":  {size: int64(len(payload)) + 10, expErr: download.ErrSizeMismatch},
		"customPerm":    {size: int64(len(payload)), opts: []download.Option{download.WithPerm(0o600)}},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			dest := filepath.Join(dir, "report.txt")

			err := download.Write(t.Context(), bytes.NewReader(payload), tc.size, dest, quietLogger(), tc.opts...)
			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Fatalf("exp err: %v, got: %v", tc.expErr, err)
				}
				if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
					t.Errorf("expected no file at dest on failure, stat err: %v", statErr)
				}
				assertNoTempFiles(t, dir)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, err := os.ReadFile(dest)
			if err != nil {
				t.Fatalf("reading dest: %v", err)
			}
			if diff := cmp.Diff(payload, got); diff != "" {
				t.Errorf("file content mismatch (-want +got):\n%s", diff)
			}
			assertNoTempFiles(t, dir)
		})
	}
}

func TestWrite_SkipExisting(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "existing.txt")
	if err := os.WriteFile(dest, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := download.Write(t.Context(), strings.NewReader("replacement"), -1, dest, quietLogger(), download.WithSkipExisting())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Errorf("expected file to be left untouched, got %q", got)
	}
}

func TestWrite_Cancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := download.Write(ctx, strings.NewReader("never written"), -1, filepath.Join(dir, "x"), quietLogger())
	if !errors.Is(err, download.ErrWriteCancelled) {
		t.Fatalf("expected ErrWriteCancelled, got: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
	assertNoTempFiles(t, dir)
}

func TestWrite_InvalidInput(t *testing.T) {
	testCases := map[string]struct {
		dest string
		opts []download.Option
	}{
		"emptyDest":     {dest: ""},
		"nilHash":       {dest: "x", opts: []download.Option{download.WithChecksum(nil, "abc")}},
		"emptyExpected": {dest: "x", opts: []download.Option{download.WithChecksum(sha256.New(), "")}},
		"badPerm":       {dest: "x", opts: []download.Option{download.WithPerm(os.ModeDir | 0o755)}},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			dest := tc.dest
			if dest != "" {
				dest = filepath.Join(t.TempDir(), dest)
			}
			if err := download.Write(t.Context(), strings.NewReader("a"), -1, dest, quietLogger(), tc.opts...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".datasvc-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

