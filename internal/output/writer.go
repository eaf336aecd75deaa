// Package output emits finished events to their destinations. The text
// writer reproduces the generator's columnar format; database persistence
// lives in the storage package.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/MaximVirta/trento/internal/collider"
	"github.com/MaximVirta/trento/internal/event"
)

// TextWriter writes one whitespace-aligned line per event:
// event number, impact parameter, npart, ncoll, attempts, multiplicity,
// and eccentricity harmonics 2 through 5.
type TextWriter struct {
	w      io.Writer
	closer io.Closer
}

// NewTextWriter wraps an arbitrary writer (typically stdout).
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// NewFileWriter creates or truncates path and writes events there.
func NewFileWriter(path string) (*TextWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("output: cannot create %s: %w", path, err)
	}
	return &TextWriter{w: f, closer: f}, nil
}

// Write emits a single event line.
func (t *TextWriter) Write(n int, res collider.Result, ev *event.Event) error {
	var err error
	if ev != nil {
		_, err = fmt.Fprintf(t.w, "%6d %8.3f %4d %6d %6d %12.5g %.5f %.5f %.5f %.5f\n",
			n, res.B, ev.Npart, res.Ncoll, res.NToCollide, ev.Mult,
			ev.Ecc[2], ev.Ecc[3], ev.Ecc[4], ev.Ecc[5])
	} else {
		_, err = fmt.Fprintf(t.w, "%6d %8.3f %6d %6d\n",
			n, res.B, res.Ncoll, res.NToCollide)
	}
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}

// Close closes the underlying file, if any.
func (t *TextWriter) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// Ensure TextWriter implements the sink contract
var _ collider.Sink = (*TextWriter)(nil)
