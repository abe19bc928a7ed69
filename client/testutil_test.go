package client_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/adamwoolhether/datasvc/client"
)

const pdfBlob = "%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n"

type test struct {
	*client.Connection

	server *httptest.Server
	hits   atomic.Int32

	mu       sync.Mutex
	lastReq  *http.Request
	lastBody []byte
}

type payload struct {
	Test string `json:"test"`
}

// last returns the most recent request the mock server received and its body.
func (ts *test) last() (*http.Request, []byte) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.lastReq, ts.lastBody
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockServer starts an API and a Connection whose base path points at it.
func mockServer(t *testing.T, opts ...client.Option) *test {
	t.Helper()

	ts := &test{}

	record := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			ts.mu.Lock()
			ts.lastReq = r.Clone(r.Context())
			ts.lastBody = body
			ts.mu.Unlock()
			ts.hits.Add(1)

			r.Body = io.NopCloser(bytes.NewReader(body))
			next(w, r)
		}
	}

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	echoHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, r.Body)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /cheesecake", record(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, payload{Test: "passed"})
	}))
	mux.HandleFunc("DELETE /cheesecake", record(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, payload{Test: "passed"})
	}))
	mux.HandleFunc("POST /cheesecake", record(echoHandler))
	mux.HandleFunc("PUT /cheesecake", record(echoHandler))
	mux.HandleFunc("PATCH /cheesecake", record(echoHandler))
	mux.HandleFunc("/status/{code}", record(func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(r.PathValue("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if code == http.StatusNoContent || code == http.StatusNotModified {
			w.WriteHeader(code)
			return
		}
		if code >= 300 && code < 400 {
			w.Header().Set("Location", "/cheesecake")
		}
		w.Header().Set("X-Code", strconv.Itoa(code))
		writeJSON(w, code, map[string]int{"code": code})
	}))
	mux.HandleFunc("/empty", record(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusCreated)
	}))
	mux.HandleFunc("/invalid", record(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("this is not json"))
	}))
	mux.HandleFunc("/number", record(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":12345678901234567}`))
	}))
	mux.HandleFunc("/report", record(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", "attachment; filename=report.pdf")
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte(pdfBlob))
	}))
	mux.HandleFunc("/quoted", record(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="q3 report.pdf"`)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte(pdfBlob))
	}))
	mux.HandleFunc("/blob", record(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte(pdfBlob))
	}))
	mux.HandleFunc("/query", record(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, r.URL.Query())
	}))
	mux.HandleFunc("/login", record(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("/whoami", record(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session")
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no session"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"session": c.Value})
	}))

	ts.server = httptest.NewServer(mux)
	t.Cleanup(ts.server.Close)

	opts = append([]client.Option{
		client.WithBasePath(ts.server.URL),
		client.WithLogger(quietLogger()),
	}, opts...)

	conn, err := client.Build(opts...)
	if err != nil {
		t.Fatalf("failed to build connection: %v", err)
	}
	ts.Connection = conn

	return ts
}

// roundTripFunc adapts a function into an http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func itoa(i int) string { return strconv.Itoa(i) }

func parseInt(t *testing.T, s string) int64 {
	t.Helper()

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return n
}

// lockedWriter serializes writes from concurrent log calls.
type lockedWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
