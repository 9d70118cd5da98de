package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// streamKillDelay is how long a streamed process gets to exit after its
// process group is signalled before the direct child is force-killed.
const streamKillDelay = 5 * time.Second

// StreamRequest describes one streamed invocation.
type StreamRequest struct {
	Argv []string          // executable path followed by arguments
	Dir  string            // working directory
	Env  map[string]string // overlay merged over the ambient environment; overlay wins
}

// StreamHandlers receive output chunks as they arrive. Either handler may
// be nil, in which case that stream is discarded.
type StreamHandlers struct {
	OnStdout func(string)
	OnStderr func(string)
}

// Stream launches the command and forwards stdout and stderr chunks to the
// handlers as they are produced, without buffering the full streams.
// The child runs in its own process group; cancelling ctx or exceeding the
// runner's Timeout terminates the whole process tree, not just the
// immediate child.
//
// A non-zero exit code is returned with a nil error: interpreting it belongs
// to the caller. The returned error is non-nil only when the process could
// not be started or its status could not be collected.
func (r *Runner) Stream(ctx context.Context, req StreamRequest, h StreamHandlers) (int, error) {
	if len(req.Argv) == 0 {
		return 0, fmt.Errorf("empty argv")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, req.Argv[0], req.Argv[1:]...)
	cmd.Dir = req.Dir
	cmd.Env = mergeEnviron(os.Environ(), req.Env)
	cmd.WaitDelay = streamKillDelay

	setProcGroup(cmd)
	cmd.Cancel = func() error {
		return terminateTree(cmd)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting %s: %w", req.Argv[0], err)
	}

	g := new(errgroup.Group)
	g.Go(func() error { return pump(stdout, h.OnStdout) })
	g.Go(func() error { return pump(stderr, h.OnStderr) })

	// Pipes must be drained before Wait.
	pumpErr := g.Wait()
	waitErr := cmd.Wait()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, fmt.Errorf("waiting for %s: %w", req.Argv[0], waitErr)
	}
	if pumpErr != nil {
		return 0, fmt.Errorf("reading output of %s: %w", req.Argv[0], pumpErr)
	}
	return 0, nil
}

// pump reads r in chunks and hands each chunk to fn until EOF.
func pump(r io.Reader, fn func(string)) error {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 && fn != nil {
			fn(string(buf[:n]))
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, fs.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

// mergeEnviron merges an overlay into a base environment in "KEY=VALUE"
// form. Overlay entries replace base entries with the same name; new names
// are appended in sorted order for deterministic invocations.
func mergeEnviron(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return base
	}

	seen := make(map[string]bool, len(overlay))
	merged := make([]string, 0, len(base)+len(overlay))
	for _, kv := range base {
		name, _, ok := strings.Cut(kv, "=")
		if ok && !seen[name] {
			if v, found := overlay[name]; found {
				merged = append(merged, name+"="+v)
				seen[name] = true
				continue
			}
		}
		merged = append(merged, kv)
	}

	rest := make([]string, 0, len(overlay))
	for name, v := range overlay {
		if !seen[name] {
			rest = append(rest, name+"="+v)
		}
	}
	sort.Strings(rest)
	return append(merged, rest...)
}
