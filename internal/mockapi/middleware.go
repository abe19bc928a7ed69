package mockapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"runtime/debug"
	"strings"
	"time"

	"github.com/adamwoolhether/datasvc/internal/validate"
)

// Logger logs the start and end of every request.
func Logger(log *slog.Logger) Middleware {
	m := func(handler Handler) Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v := GetValues(ctx)

			target := r.URL.Path
			if r.URL.RawQuery != "" {
				target = fmt.Sprintf("%s?%s", target, r.URL.RawQuery)
			}

			log.Info("request started", "trace_id", v.TraceID, "method", r.Method, "path", target, "remoteaddr", r.RemoteAddr)

			err := handler(ctx, w, r)

			log.Info("request completed", "trace_id", v.TraceID, "method", r.Method, "path", target, "statusCode", v.StatusCode, "since", time.Since(v.Now).String())

			return err
		}

		return h
	}

	return m
}

// Errors turns handler errors into JSON responses. Validation failures
// become 422, an *Error keeps its code, anything else is a 500 whose
// message is hidden.
func Errors(log *slog.Logger) Middleware {
	m := func(handler Handler) Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			if fieldErrs, ok := validate.AsFieldErrors(err); ok {
				return RespondJSON(ctx, w, http.StatusUnprocessableEntity, fieldErrs)
			}

			var appErr *Error
			if !errors.As(err, &appErr) {
				appErr = NewInternal(err)
			}

			reqLog := log.With("trace_id", GetValues(ctx).TraceID)
			reqLog.Error(err.Error(), "source_err_file", path.Base(appErr.FileName), "source_err_func", path.Base(appErr.FuncName))

			resp := *appErr
			if resp.InnerErr {
				resp.Message = http.StatusText(resp.Code)
			}

			return RespondError(ctx, w, &resp)
		}

		return h
	}

	return m
}

// Panics recovers from panics if they occur.
func Panics() Middleware {
	m := func(handler Handler) Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					trace := debug.Stack()
					err = fmt.Errorf("PANIC [%v] TRACE[%s]", rec, string(trace))
				}
			}()

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// CORS answers cross-origin requests from the allowed origins with
// credentials allowed, so browser clients can send the session cookie.
// A "*" origin accepts every origin; other entries may be path.Match
// patterns.
func CORS(allowedOrigins []string) Middleware {
	originAllowed := checkOriginFunc(allowedOrigins)
	headers := strings.Join([]string{"Authorization", "Content-Type", "Accept", "Cache-Control", "Traceparent"}, ", ")

	m := func(handler Handler) Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return handler(ctx, w, r)
			}

			if !originAllowed(origin) {
				return RespondError(ctx, w, NewError(http.StatusForbidden, fmt.Errorf("CORS origin[%s] not allowed", origin)))
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS, PUT, POST, PATCH, DELETE")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.Header().Set("Access-Control-Allow-Headers", headers)
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, "+TraceHeader)

			if r.Method == http.MethodOptions {
				return RespondJSON(ctx, w, http.StatusNoContent, nil)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func checkOriginFunc(allowedOrigins []string) func(string) bool {
	allowed := make(map[string]bool)
	var wildcards []string

	for _, o := range allowedOrigins {
		for _, origin := range strings.Split(o, ",") {
			origin = strings.TrimSpace(origin)
			switch {
			case origin == "":
			case strings.Contains(origin, "*") && origin != "*":
				wildcards = append(wildcards, origin)
			default:
				allowed[origin] = true
			}
		}
	}
	allowAll := allowed["*"]

	return func(origin string) bool {
		if allowAll || allowed[origin] {
			return true
		}
		for _, pattern := range wildcards {
			if ok, err := path.Match(pattern, origin); ok && err == nil {
				return true
			}
		}
		return false
	}
}
