package tex

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/texkit/texkit/internal/config"
	"github.com/texkit/texkit/internal/report"
	"github.com/texkit/texkit/internal/runner"
)

// CommandRunner executes supervised commands. Implemented by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, cwd string) (*runner.Result, error)
	Stream(ctx context.Context, req runner.StreamRequest, h runner.StreamHandlers) (int, error)
}

// Engine holds shared dependencies for compile and probe operations.
// Each operation builds its own environment, toolchain info and invocation
// plan; nothing is shared between concurrent operations.
type Engine struct {
	Config   *config.Config
	Runner   CommandRunner
	Store    report.Store // optional; records are kept when non-nil
	Platform Platform     // zero value resolves to the host platform
	Env      Snapshot     // ambient snapshot; nil snapshots at call time
	LookPath func(string) (string, error) // nil uses exec.LookPath
}

// ErrToolNotFound is returned when the toolchain executable cannot be
// located on the search path.
type ErrToolNotFound struct {
	Name string
}

func (e ErrToolNotFound) Error() string {
	return fmt.Sprintf("can't find %s. Install a TeX distribution that provides it (TeX Live or MiKTeX) and make sure it is on PATH.", e.Name)
}

// Compile runs the full orchestrated compile of the document at path:
// locate the toolchain, probe it, compose the environment, build arguments,
// and stream the compile through the runner. Output and error text go to
// sink; any terminal failure is reported there as a single error line.
//
// The returned record always describes the attempt. A non-zero toolchain
// exit is recorded, not treated as a terminal failure: the streamed output
// already carries the toolchain's own diagnostics.
func (e *Engine) Compile(ctx context.Context, path string, sink Sink) *report.RunRecord {
	rec := &report.RunRecord{
		ID:      uuid.New().String(),
		Kind:    report.Compile,
		Started: time.Now().UTC(),
	}
	defer e.save(rec)

	target, err := resolveTarget(path)
	if err != nil {
		return e.fail(rec, sink, err.Error())
	}
	rec.File = target

	exe, err := e.locateEngine()
	if err != nil {
		return e.fail(rec, sink, err.Error())
	}
	rec.Engine = exe

	info, err := e.probe(ctx, exe)
	if err != nil {
		return e.fail(rec, sink, err.Error())
	}
	rec.Distro = string(info.Distro)

	platform := e.platform()
	paths := DiscoverTexmf(ctx, e.Runner, e.Config.TexmfRoot)
	rec.TexmfFound = !paths.Empty()

	env := CompileEnv(e.snapshot(), platform, paths, e.Config.ScriptsDir)
	args := BuildArgs(info, platform, paths, e.Config.Compile.Args)
	rec.Args = args

	plan := &InvocationPlan{
		Engine: exe,
		Args:   args,
		Env:    Overlay(env),
		Dir:    filepath.Dir(target),
		Target: filepath.Base(target),
	}

	log := newCappedLog(e.Config.MaxOutputBytes())
	code, err := e.Runner.Stream(ctx, runner.StreamRequest{
		Argv: plan.Argv(),
		Dir:  plan.Dir,
		Env:  plan.Env,
	}, runner.StreamHandlers{
		OnStdout: func(s string) {
			sink.WriteOutput(s)
			log.append(s)
		},
		OnStderr: func(s string) {
			sink.WriteError(s)
			log.append(s)
		},
	})
	if err != nil {
		return e.fail(rec, sink, err.Error())
	}

	rec.ExitCode = code
	rec.Log = log.String()
	rec.Issues = ParseLog(rec.Log)
	return rec
}

// Probe locates the toolchain and runs the version probe, recording the
// outcome. Unlike Compile it returns errors to the caller; the CLI and MCP
// layers present them.
func (e *Engine) Probe(ctx context.Context) (*ToolchainInfo, error) {
	rec := &report.RunRecord{
		ID:      uuid.New().String(),
		Kind:    report.Probe,
		Started: time.Now().UTC(),
	}
	defer e.save(rec)

	exe, err := e.locateEngine()
	if err != nil {
		rec.Error = err.Error()
		return nil, err
	}
	rec.Engine = exe

	info, err := e.probe(ctx, exe)
	if err != nil {
		rec.Error = err.Error()
		return nil, err
	}
	rec.Distro = string(info.Distro)
	rec.Log = info.RawVersion
	return info, nil
}

// probe executes the toolchain with its version flag, synchronously and with
// the ambient environment only, and classifies the distribution.
func (e *Engine) probe(ctx context.Context, exe string) (*ToolchainInfo, error) {
	res, err := e.Runner.Run(ctx, []string{exe, "--version"}, "")
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", exe, err)
	}
	if res.ExitCode != 0 {
		return nil, &ProbeError{
			Path:     exe,
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
		}
	}

	raw := string(res.Stdout)
	return &ToolchainInfo{
		Path:       exe,
		RawVersion: raw,
		Distro:     ClassifyDistro(raw),
	}, nil
}

// locateEngine resolves the configured toolchain binary on the search path.
func (e *Engine) locateEngine() (string, error) {
	name := e.Config.Engine()
	lookPath := e.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(name)
	if err != nil {
		return "", ErrToolNotFound{Name: name}
	}
	return path, nil
}

func (e *Engine) platform() Platform {
	if e.Platform != "" {
		return e.Platform
	}
	return HostPlatform()
}

func (e *Engine) snapshot() Snapshot {
	if e.Env != nil {
		return e.Env
	}
	return EnvironSnapshot()
}

// fail marks the record as terminally failed and reports the reason as a
// single error line on the sink. Nothing propagates past the orchestrator.
func (e *Engine) fail(rec *report.RunRecord, sink Sink, msg string) *report.RunRecord {
	rec.Error = msg
	sink.WriteError(msg + "\n")
	return rec
}

func (e *Engine) save(rec *report.RunRecord) {
	if e.Store != nil {
		_ = e.Store.Save(rec)
	}
}

// resolveTarget resolves the user-supplied document path to an absolute
// path of an existing regular file.
func resolveTarget(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("no document given")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%s not found", path)
	}
	if fi.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return abs, nil
}

// cappedLog accumulates streamed output up to a byte limit; later chunks
// are dropped once the cap is hit, mirroring the buffered runner's cap.
// The stdout and stderr pumps append concurrently, hence the lock.
type cappedLog struct {
	mu    sync.Mutex
	b     strings.Builder
	limit int
}

func newCappedLog(limit int) *cappedLog {
	return &cappedLog{limit: limit}
}

func (l *cappedLog) append(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	remaining := l.limit - l.b.Len()
	if remaining <= 0 {
		return
	}
	if len(s) > remaining {
		s = s[:remaining]
	}
	l.b.WriteString(s)
}

func (l *cappedLog) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}
