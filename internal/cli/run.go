package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	pkgerrors "github.com/pkg/errors"

	"github.com/adamwoolhether/datasvc/client"
	"github.com/adamwoolhether/datasvc/internal/config"
)

// Env is the process environment a command runs in.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// EnableColor colours the output. Main sets it when stdout is a terminal.
	EnableColor bool

	// ClientOptions are applied after those derived from the config.
	ClientOptions []client.Option
}

// Main runs one invocation of the command with the real process
// environment.
func Main(ctx context.Context, args []string) error {
	env := Env{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		EnableColor: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}

	return env.Main(ctx, args)
}

// Main loads the configuration, parses args and runs the request.
func (e Env) Main(ctx context.Context, args []string) error {
	flagSet, opts, err := Parse(args)
	if IsUsageError(err) {
		flagSet.PrintUsage(e.Stderr)
		return err
	}
	if err != nil {
		return err
	}
	if opts.Help {
		flagSet.PrintUsage(e.Stdout)
		return config.Usage(e.Stdout)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(e.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	if opts.Args.Body == "-" {
		body, err := io.ReadAll(e.Stdin)
		if err != nil {
			return pkgerrors.Wrap(err, "reading body from stdin")
		}
		opts.Args.Body = string(body)
	}

	if err := opts.Args.Validate(); err != nil {
		if IsUsageError(err) {
			flagSet.PrintUsage(e.Stderr)
		}
		return err
	}

	conn, err := client.Build(append(cfg.ClientOptions(logger), e.ClientOptions...)...)
	if err != nil {
		return pkgerrors.Wrap(err, "building connection")
	}

	return Run(ctx, conn, opts, NewPrinter(e.Stdout, e.EnableColor))
}

// Run sends the request described by opts through conn and prints the
// outcome. A response outside 200-399 is printed and returned as an error.
func Run(ctx context.Context, conn *client.Connection, opts *Options, p *Printer) error {
	b := builder(conn, opts)

	if opts.FileMode() {
		return runFile(ctx, b, opts, p)
	}

	res, err := b.JSON(ctx)
	if err != nil {
		return report(p, err)
	}

	if res.Empty() {
		p.StatusText(res.StatusText())
		return nil
	}

	return p.JSON(res.Raw())
}

func runFile(ctx context.Context, b *client.Builder, opts *Options, p *Printer) error {
	f, err := b.File(ctx)
	if err != nil {
		return report(p, err)
	}

	if opts.Output != "" {
		dest := destination(opts.Output, f.Filename)
		if err := f.Save(ctx, dest); err != nil {
			return pkgerrors.Wrap(err, "saving response")
		}
		p.Saved(dest, len(f.Blob))
	}

	if opts.Open {
		path, err := f.Open(ctx)
		if err != nil {
			return pkgerrors.Wrap(err, "opening response")
		}
		p.Saved(path, len(f.Blob))
	}

	return nil
}

func builder(conn *client.Connection, opts *Options) *client.Builder {
	var body any
	if opts.Args.Body != "" {
		body = json.RawMessage(opts.Args.Body)
	}

	switch opts.Args.Method {
	case http.MethodPost:
		return conn.Post(opts.Args.Address, body)
	case http.MethodPatch:
		return conn.Patch(opts.Args.Address, body)
	case http.MethodDelete:
		return conn.Delete(opts.Args.Address)
	default:
		var vopts []client.VerbOption
		if opts.Reload {
			vopts = append(vopts, client.WithStaticReload())
		}
		return conn.Get(opts.Args.Address, vopts...)
	}
}

// report prints a failed response before returning it.
func report(p *Printer, err error) error {
	var respErr *client.ResponseError
	if errors.As(err, &respErr) {
		p.Status(respErr.StatusCode, respErr.Status)
		if len(respErr.Body) > 0 {
			if perr := p.JSON(respErr.Body); perr != nil {
				return perr
			}
		}
	}

	return err
}

// destination resolves where a saved file goes. A directory keeps the
// server suggested filename.
func destination(output, filename string) string {
	if strings.HasSuffix(output, string(os.PathSeparator)) || strings.HasSuffix(output, "/") {
		return filepath.Join(output, filepath.Base(filename))
	}
	if fi, err := os.Stat(output); err == nil && fi.IsDir() {
		return filepath.Join(output, filepath.Base(filename))
	}

	return output
}
