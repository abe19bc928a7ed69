// Package cli implements the datasvc command: one request per invocation,
// built from flags and the DATASVC_* environment.
package cli

import (
	"io"
	"strings"

	"github.com/pborman/getopt"
	"github.com/pkg/errors"

	"github.com/adamwoolhether/datasvc/internal/validate"
)

// methods lists the verbs recognised as a leading positional argument.
var methods = map[string]bool{"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true}

// CommandLineArguments is the request one invocation sends.
type CommandLineArguments struct {
	Address string `json:"address" validate:"required"`
	Method  string `json:"method" validate:"required,oneof=GET POST PATCH DELETE"`
	Body    string `json:"body" validate:"omitempty,json"`
}

// Options is everything parsed from the command line.
type Options struct {
	Args CommandLineArguments

	// Output saves the response as a file at this path instead of
	// printing it. A trailing slash or an existing directory keeps the
	// server suggested filename.
	Output string
	Open   bool
	Reload bool
	Help   bool
}

// FileMode reports whether the response is handled as a file.
func (o *Options) FileMode() bool {
	return o.Output != "" || o.Open
}

// FlagSet is the parsed command line.
type FlagSet interface {
	Args() []string
	PrintUsage(w io.Writer)
}

// UsageError is a command line the tool cannot act on.
type UsageError string

func (e *UsageError) Error() string {
	return string(*e)
}

func newUsageError(message string) error {
	u := UsageError(message)
	return errors.WithStack(&u)
}

// IsUsageError reports whether err was caused by a bad command line.
func IsUsageError(err error) bool {
	_, ok := errors.Cause(err).(*UsageError)
	return ok
}

// Parse reads flags and positional arguments. Positional arguments take
// the form [METHOD] ADDRESS [BODY] and fill whatever the flags left
// empty. args[0] is the program name.
func Parse(args []string) (FlagSet, *Options, error) {
	opts := &Options{}
	method := ""

	flagSet := getopt.New()
	flagSet.SetParameters("[METHOD] ADDRESS [BODY]")
	flagSet.StringVarLong(&opts.Args.Address, "address", 'a', "request path, joined to DATASVC_BASE_PATH", "path")
	flagSet.StringVarLong(&method, "method", 'm', "GET, POST, PATCH or DELETE (default GET)", "method")
	flagSet.StringVarLong(&opts.Args.Body, "body", 'b', "JSON request body, - reads stdin", "json")
	flagSet.StringVarLong(&opts.Output, "output", 'o', "save the response as a file", "path")
	flagSet.BoolVarLong(&opts.Open, "open", 0, "open the response in the platform viewer")
	flagSet.BoolVarLong(&opts.Reload, "reload", 'r', "bypass caches with a cache-busting query parameter")
	flagSet.BoolVarLong(&opts.Help, "help", 'h', "show this help")

	if err := flagSet.Getopt(args, nil); err != nil {
		return flagSet, nil, newUsageError(err.Error())
	}
	if opts.Help {
		return flagSet, opts, nil
	}

	rest := flagSet.Args()
	if len(rest) > 1 && opts.Args.Address == "" && method == "" && methods[strings.ToUpper(rest[0])] {
		method, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 && opts.Args.Address == "" {
		opts.Args.Address, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 && opts.Args.Body == "" {
		opts.Args.Body, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 {
		return flagSet, nil, newUsageError("unexpected argument: " + rest[0])
	}

	opts.Args.Method = strings.ToUpper(method)
	if opts.Args.Method == "" {
		opts.Args.Method = "GET"
		if opts.Args.Body != "" {
			opts.Args.Method = "POST"
		}
	}

	return flagSet, opts, nil
}

// Validate checks the arguments once any stdin body has been read.
func (a CommandLineArguments) Validate() error {
	if err := validate.Check(&a); err != nil {
		if fe, ok := validate.AsFieldErrors(err); ok {
			return newUsageError(fe.Error())
		}
		return errors.Wrap(err, "validating arguments")
	}

	if a.Method == "DELETE" && a.Body != "" {
		return newUsageError("body: DELETE requests carry no body")
	}

	return nil
}
