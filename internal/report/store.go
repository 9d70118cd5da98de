// Package report provides structured persistence and retrieval of
// compile and probe run records.
package report

import "time"

// Kind identifies the type of a run.
type Kind string

const (
	// Compile is a full document-to-PDF run.
	Compile Kind = "compile"
	// Probe is a toolchain version/variant probe.
	Probe Kind = "probe"
)

// Store persists and retrieves run records.
type Store interface {
	Save(rec *RunRecord) error
	Load(runID string) (*RunRecord, error)
	// List returns all stored records, most recent first.
	List() ([]*RunRecord, error)
}

// RunRecord holds the structured outcome of one toolchain invocation.
type RunRecord struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Started time.Time `json:"started"`

	// Invocation facts.
	File   string   `json:"file,omitempty"`   // target document (compile runs)
	Engine string   `json:"engine,omitempty"` // resolved executable path
	Args   []string `json:"args,omitempty"`

	// Toolchain facts.
	Distro     string `json:"distro,omitempty"` // classified distribution
	TexmfFound bool   `json:"texmf_found"`      // false when path augmentation was skipped

	// Outcome.
	ExitCode int     `json:"exit_code"`
	Error    string  `json:"error,omitempty"` // terminal failure reason, empty otherwise
	Issues   []Issue `json:"issues,omitempty"`
	Log      string  `json:"log,omitempty"` // tail of the captured output
}

// Issue is one diagnostic extracted from the toolchain's console output.
type Issue struct {
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
	Context string `json:"context,omitempty"` // source excerpt following the error
}

// Failed reports whether the run ended in a terminal failure or a
// non-zero toolchain exit.
func (r *RunRecord) Failed() bool {
	return r.Error != "" || r.ExitCode != 0
}
