package tex

// InvocationPlan is the fully resolved input set for one compile run.
// It is immutable once built and owned by the runner for the duration of
// the run.
type InvocationPlan struct {
	Engine string            // resolved toolchain executable path
	Args   []string          // ordered argument tokens, without the target
	Env    map[string]string // environment overlay; ambient values fill the rest
	Dir    string            // working directory (the target's directory)
	Target string            // target filename, relative to Dir
}

// Argv returns the complete argument vector with the target appended last.
func (p *InvocationPlan) Argv() []string {
	argv := make([]string, 0, len(p.Args)+2)
	argv = append(argv, p.Engine)
	argv = append(argv, p.Args...)
	return append(argv, p.Target)
}
