package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/adamwoolhether/datasvc/internal/validate"
)

// RespondJSON to an HTTP request, setting the status code and body if any.
// A nil data writes an empty body with Content-Length: 0.
func RespondJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) error {
	SetStatusCode(ctx, statusCode)

	if statusCode == http.StatusNoContent || data == nil {
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		return err
	}

	return nil
}

// RespondError writes err's code and message as JSON.
func RespondError(ctx context.Context, w http.ResponseWriter, err *Error) error {
	return RespondJSON(ctx, w, err.Code, err)
}

// RespondFile writes blob as an attachment named filename.
func RespondFile(ctx context.Context, w http.ResponseWriter, filename, contentType string, blob []byte) error {
	SetStatusCode(ctx, http.StatusOK)

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(blob); err != nil {
		return err
	}

	return nil
}

// Decode reads the body of an HTTP request looking for a JSON document
// and checks the result against its validate tags.
func Decode[T any](r *http.Request, val *T) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(val); err != nil {
		return NewError(http.StatusBadRequest, fmt.Errorf("decode: %w", err))
	}

	if err := validate.Check(val); err != nil {
		return err
	}

	return nil
}
