//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// setProcGroup places the child in its own process group so the whole tree
// can be signalled at once. texi2dvi spawns pdflatex and bibtex children;
// killing only the direct child would orphan them.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateTree signals the child's process group. The group ID equals the
// child's pid because of Setpgid. If the group signal fails (the process may
// already be gone), fall back to killing the direct child.
func terminateTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}
