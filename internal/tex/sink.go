package tex

import "io"

// Sink receives the toolchain's streamed output and the orchestrator's
// error lines. Text arrives as produced, not line-buffered, and the two
// methods are called from separate goroutines during a compile, so
// implementations must be safe for concurrent use.
type Sink interface {
	WriteOutput(text string)
	WriteError(text string)
}

// ConsoleSink forwards toolchain output to a pair of writers,
// typically os.Stdout and os.Stderr.
type ConsoleSink struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (s ConsoleSink) WriteOutput(text string) {
	if s.Stdout != nil {
		io.WriteString(s.Stdout, text)
	}
}

func (s ConsoleSink) WriteError(text string) {
	if s.Stderr != nil {
		io.WriteString(s.Stderr, text)
	}
}
