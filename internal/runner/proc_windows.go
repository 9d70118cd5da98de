//go:build windows

package runner

import (
	"os/exec"
	"syscall"
)

// setProcGroup starts the child in a new process group so console control
// events do not propagate to the parent.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// terminateTree kills the direct child. Full tree termination on Windows
// needs job objects; until then descendants are reparented and exit when
// their pipes close.
func terminateTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
