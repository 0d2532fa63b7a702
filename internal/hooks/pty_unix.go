//go:build !windows

package hooks

import (
	"bytes"
	"io"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// isTerminal reports whether the given file descriptor refers to a terminal.
// It is a package-level variable so unit tests can override it to simulate
// terminal conditions without requiring a real TTY.
var isTerminal = func(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// startWithPTY starts the command with a hybrid PTY setup: the child's
// stdin and controlling terminal use a PTY so programs that open /dev/tty
// (polkit agents, sudo) work, while stdout/stderr stay pipes so output
// remains line-oriented.
var startWithPTY = func(cmd *exec.Cmd, stdin io.Reader, stdout, stderr io.Writer) (*bytes.Buffer, *bytes.Buffer, error) {
	ptmx, pts, err := pty.Open()
	if err != nil {
		return &bytes.Buffer{}, &bytes.Buffer{}, err
	}

	cmd.Stdin = pts
	var bout, berr bytes.Buffer
	cmd.Stdout = io.MultiWriter(&bout, stdout)
	if stderr == stdout {
		cmd.Stderr = cmd.Stdout
	} else {
		cmd.Stderr = io.MultiWriter(&berr, stderr)
	}

	// Make the PTY slave the child's controlling terminal so /dev/tty
	// refers to our PTY, not the real host terminal.
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = true

	if err := cmd.Start(); err != nil {
		_ = pts.Close()
		_ = ptmx.Close()
		return &bytes.Buffer{}, &bytes.Buffer{}, err
	}
	_ = pts.Close() // child has its own copy; close ours

	// Forward user input into the PTY master so interactive prompts
	// receive keystrokes, and forward prompt output written to /dev/tty
	// back to the caller.
	go func() { _, _ = io.Copy(ptmx, stdin) }()
	go func() { _, _ = io.Copy(stdout, ptmx) }()

	err = cmd.Wait()
	_ = ptmx.Close()
	return &bout, &berr, err
}
