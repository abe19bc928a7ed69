// Package download writes payloads to disk atomically, with optional
// checksum validation.
//
// [Write] copies into a temporary file alongside the destination path,
// then renames it on success:
//
//	err := download.Write(ctx, bytes.NewReader(blob), int64(len(blob)), destPath, logger,
//		download.WithChecksum(sha256.New(), expectedHex),
//	)
//
// Most callers should use [github.com/adamwoolhether/datasvc/client.File.Save],
// which calls Write and re-exports the options as client.With* functions.
package download
