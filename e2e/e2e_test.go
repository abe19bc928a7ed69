//go:build integration

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adamwoolhether/datasvc/client"
	"github.com/adamwoolhether/datasvc/internal/cli"
	"github.com/adamwoolhether/datasvc/internal/mockapi"
	"github.com/adamwoolhether/datasvc/internal/validate"
)

// -------------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------------

// startAPI runs the mock API on a free local port until the test ends.
func startAPI(t *testing.T) string {
	t.Helper()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := mockapi.New(mockapi.NewStore(),
		mockapi.WithAppLogger(log),
		mockapi.WithGlobalMW(mockapi.CORS([]string{"https://allowed.example.com"})),
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("finding free port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	srv := mockapi.NewServer(app, mockapi.WithHost(addr), mockapi.WithServerLogger(log))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("server run: %v", err)
		}
	})

	baseURL := "http://" + addr
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/users")
		if err == nil {
			resp.Body.Close()
			return baseURL
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("mock API at %s not ready", baseURL)

	return ""
}

func newConn(t *testing.T, baseURL string, opts ...client.Option) *client.Connection {
	t.Helper()

	opts = append([]client.Option{client.WithBasePath(baseURL)}, opts...)

	conn, err := client.Build(opts...)
	if err != nil {
		t.Fatalf("building connection: %v", err)
	}

	return conn
}

// -------------------------------------------------------------------------
// Tests
// -------------------------------------------------------------------------

func TestE2E_JSONRoundTrip(t *testing.T) {
	conn := newConn(t, startAPI(t))

	sent := mockapi.NewUser{Name: "Alice", Email: "alice@test.com"}

	var got mockapi.User
	if _, err := conn.Post("users", sent).JSON(t.Context(), client.WithDestination(&got)); err != nil {
		t.Fatalf("creating user: %v", err)
	}

	if got.Name != sent.Name || got.Email != sent.Email || got.ID == 0 {
		t.Errorf("round-trip mismatch:\n  got:  %+v\n  want: %+v", got, sent)
	}
}

func TestE2E_ErrorHandling(t *testing.T) {
	conn := newConn(t, startAPI(t))

	_, err := conn.Get("users/99").JSON(t.Context())

	var respErr *client.ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected ResponseError, got %T: %v", err, err)
	}
	if respErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", respErr.StatusCode, http.StatusNotFound)
	}

	wantBody := `{"code":404,"message":"user[99] not found"}`
	if string(respErr.Body) != wantBody {
		t.Errorf("body = %q, want %q", respErr.Body, wantBody)
	}
}

func TestE2E_FieldValidationErrors(t *testing.T) {
	conn := newConn(t, startAPI(t))

	_, err := conn.Post("users", mockapi.NewUser{Email: "not-an-email"}).JSON(t.Context())

	var respErr *client.ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected ResponseError, got %T: %v", err, err)
	}
	if respErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", respErr.StatusCode, http.StatusUnprocessableEntity)
	}

	var fields []validate.FieldError
	if err := json.Unmarshal(respErr.Body, &fields); err != nil {
		t.Fatalf("parsing field errors: %v\nbody: %s", err, respErr.Body)
	}
	if len(fields) < 2 {
		t.Fatalf("expected at least 2 field errors, got %d: %v", len(fields), fields)
	}
}

func TestE2E_SessionAndReport(t *testing.T) {
	var navigated []string
	conn := newConn(t, startAPI(t),
		client.WithRedirectURL("https://app.example.com/login"),
		client.WithNavigator(client.NavigatorFunc(func(url string) { navigated = append(navigated, url) })),
	)
	ctx := t.Context()

	if _, err := conn.Get("reports/q3").File(ctx); !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized before login, got %v", err)
	}
	if len(navigated) != 1 || navigated[0] != "https://app.example.com/login" {
		t.Fatalf("navigated = %v", navigated)
	}

	resp, err := conn.Post("session", map[string]string{"name": "alice"}).Request(ctx)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()

	f, err := conn.Get("reports/q3").File(ctx)
	if err != nil {
		t.Fatalf("downloading report: %v", err)
	}
	if f.Filename != "q3 report.pdf" || f.ContentType != "application/pdf" {
		t.Errorf("file = %q %q", f.Filename, f.ContentType)
	}

	destPath := filepath.Join(t.TempDir(), f.Filename)
	if err := f.Save(ctx, destPath); err != nil {
		t.Fatalf("saving: %v", err)
	}

	info, err := os.Stat(destPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != int64(len(f.Blob)) {
		t.Errorf("file size = %d, want %d", info.Size(), len(f.Blob))
	}
}

func TestE2E_TracePropagation(t *testing.T) {
	conn := newConn(t, startAPI(t))

	resp, err := conn.Get("users").Request(t.Context())
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get(mockapi.TraceHeader) == "" {
		t.Errorf("missing %s", mockapi.TraceHeader)
	}
}

func TestE2E_MiddlewareCORS(t *testing.T) {
	conn := newConn(t, startAPI(t))
	conn.AddHeader("Origin", "https://allowed.example.com")

	resp, err := conn.Get("users").Request(t.Context())
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://allowed.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "https://allowed.example.com")
	}
	if got := resp.Header.Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q, want %q", got, "Origin")
	}
	if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want %q", got, "true")
	}

	conn.AddHeader("Origin", "https://denied.example.com")
	_, err = conn.Get("users").Request(t.Context())

	var respErr *client.ResponseError
	if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for denied origin, got %v", err)
	}
}

func TestE2E_CommandLine(t *testing.T) {
	baseURL := startAPI(t)
	t.Setenv("DATASVC_BASE_PATH", baseURL)
	t.Setenv("DATASVC_LOG_LEVEL", "error")

	tests := map[string]struct {
		args []string
		want string
	}{
		"get":    {args: []string{"users/1"}, want: `"name": "alice"`},
		"post":   {args: []string{"POST", "users", `{"name":"bob","email":"bob@test.com"}`}, want: `"name": "bob"`},
		"delete": {args: []string{"DELETE", "session"}, want: "No Content"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			env := cli.Env{Stdin: strings.NewReader(""), Stdout: &stdout, Stderr: &stderr}

			if err := env.Main(t.Context(), append([]string{"datasvc"}, tc.args...)); err != nil {
				t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
			}
			if !strings.Contains(stdout.String(), tc.want) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tc.want)
			}
		})
	}

	t.Run("download", func(t *testing.T) {
		dir := t.TempDir() + string(filepath.Separator)

		var stdout, stderr bytes.Buffer
		env := cli.Env{Stdin: strings.NewReader(""), Stdout: &stdout, Stderr: &stderr}

		// Reports need a session, which a single invocation does not hold.
		err := env.Main(t.Context(), []string{"datasvc", "-o", dir, "reports/export"})
		var respErr *client.ResponseError
		if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
		if !strings.Contains(stdout.String(), fmt.Sprint(http.StatusUnauthorized)) {
			t.Errorf("stdout = %q, want the status line", stdout.String())
		}
	})
}
