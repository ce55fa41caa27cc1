package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter fans each write out to all writers, e.g. stdout and the
// rotating log file. A failing writer does not stop the others.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		Writers: append([]io.Writer(nil), writers...),
	}
}

// Write returns the total number of bytes written across all writers.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var (
		total int
		errs  error
	)
	for _, w := range cw.Writers {
		n, err := w.Write(p)
		total += n
		errs = multierr.Append(errs, err)
	}
	return total, errs
}
