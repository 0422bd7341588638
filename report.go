package goldbach

import (
	"fmt"
	"io"
)

// Reporter receives the outcome of each resolved target.
type Reporter interface {
	Found(n int, p Pair)
	NotFound(n int)
}

// LineReporter writes results as text lines. Found pairs are printed only for
// targets divisible by Every (Every <= 0 prints none); a missing pair is always
// printed.
type LineReporter struct {
	W     io.Writer
	Every int
}

// Found prints "n = p + q" when n falls on the reporting cadence.
func (r LineReporter) Found(n int, p Pair) {
	if r.Every <= 0 || n%r.Every != 0 {
		return
	}
	fmt.Fprintf(r.W, "%d = %d + %d\n", n, p.P, p.Q)
}

// NotFound prints the no-pair line.
func (r LineReporter) NotFound(n int) {
	fmt.Fprintf(r.W, "No Goldbach pair found for %d\n", n)
}
