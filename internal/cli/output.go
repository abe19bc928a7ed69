package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"code.cloudfoundry.org/bytefmt"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
)

// Printer renders results for a terminal or a pipe.
type Printer struct {
	writer  io.Writer
	aurora  aurora.Aurora
	palette *Palette
}

// Palette colours the pieces of a result.
type Palette struct {
	Success aurora.Color
	Failure aurora.Color
	Path    aurora.Color
	Size    aurora.Color
}

var defaultPalette = Palette{
	Success: aurora.GreenFg | aurora.BoldFm,
	Failure: aurora.RedFg | aurora.BoldFm,
	Path:    aurora.CyanFg,
	Size:    aurora.BrownFg,
}

// NewPrinter returns a Printer writing to w, colouring output when
// enableColor is set.
func NewPrinter(w io.Writer, enableColor bool) *Printer {
	return &Printer{
		writer:  w,
		aurora:  aurora.NewAurora(enableColor),
		palette: &defaultPalette,
	}
}

// Status prints a status line such as "201 Created".
func (p *Printer) Status(code int, text string) {
	color := p.palette.Success
	if code >= 400 {
		color = p.palette.Failure
	}

	fmt.Fprintln(p.writer, p.aurora.Colorize(fmt.Sprintf("%d %s", code, text), color))
}

// StatusText prints a bare reason phrase, used for empty bodies.
func (p *Printer) StatusText(text string) {
	fmt.Fprintln(p.writer, p.aurora.Colorize(text, p.palette.Success))
}

// JSON pretty prints a JSON document. Anything else is written as is.
func (p *Printer) JSON(raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "    "); err != nil {
		if _, err := p.writer.Write(raw); err != nil {
			return errors.Wrap(err, "printing body")
		}
		return nil
	}

	buf.WriteByte('\n')
	if _, err := buf.WriteTo(p.writer); err != nil {
		return errors.Wrap(err, "printing body")
	}
	return nil
}

// Saved reports a file written to path.
func (p *Printer) Saved(path string, size int) {
	fmt.Fprintf(p.writer, "saved %s (%s)\n",
		p.aurora.Colorize(path, p.palette.Path),
		p.aurora.Colorize(bytefmt.ByteSize(uint64(size)), p.palette.Size))
}
