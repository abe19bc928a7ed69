package mockapi

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TraceHeader carries the request's trace id back to the caller.
const TraceHeader = "X-Trace-Id"

type ctxKey int

const (
	base ctxKey = iota + 1
)

// Values are shared by the middleware of one request.
type Values struct {
	TraceID    string
	Now        time.Time
	StatusCode int

	// User is the signed in user on session protected routes.
	User string
}

// SetStatusCode records the status written for the request.
func SetStatusCode(ctx context.Context, statusCode int) {
	v, ok := ctx.Value(base).(*Values)
	if !ok {
		return
	}

	v.StatusCode = statusCode
}

// GetValues returns the request's Values. Outside an App handler an
// empty set with a nil trace id is returned.
func GetValues(ctx context.Context) *Values {
	v, ok := ctx.Value(base).(*Values)
	if !ok {
		return &Values{
			TraceID: uuid.Nil.String(),
			Now:     time.Now(),
		}
	}

	return v
}

func setValues(ctx context.Context, v *Values) context.Context {
	return context.WithValue(ctx, base, v)
}
