package cli

import (
	"fmt"
	"io"
)

// IO collects command output and warnings.
//
// Warnings are printed to stderr both before the first line of regular output
// and again at the end, so they survive head/tail truncation. Any warning turns
// the exit code into 1 while normal output still goes to stdout, which allows
// partial results with the problems flagged.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []string
	started  bool
}

// NewIO creates an IO writing to out and errOut.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn records a warning: issue says what went wrong, action what to do about it.
func (o *IO) Warn(issue string, action string) {
	o.warnings = append(o.warnings, fmt.Sprintf("%s: %s", issue, action))
}

// Println writes to stdout. On first call, collected warnings are printed to
// stderr first.
func (o *IO) Println(a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Out returns the stdout writer, for encoders that stream into it.
func (o *IO) Out() io.Writer {
	o.flushWarningsStart()

	return o.out
}

// Finish prints warnings to stderr and returns 1 if there were any.
func (o *IO) Finish() int {
	o.flushWarningsStart()

	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}

	if len(o.warnings) > 0 {
		return 1
	}

	return 0
}

// stderr returns an IO whose regular output goes to stderr.
func (o *IO) stderr() *IO {
	return &IO{out: o.errOut, errOut: o.errOut, started: true}
}

func (o *IO) flushWarningsStart() {
	if !o.started && len(o.warnings) > 0 {
		for _, w := range o.warnings {
			_, _ = fmt.Fprintln(o.errOut, "warning:", w)
		}

		o.started = true
	}
}
