//go:build windows

package hooks

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
)

var isTerminal = func(fd uintptr) bool { return false }

var startWithPTY = func(cmd *exec.Cmd, stdin io.Reader, stdout, stderr io.Writer) (*bytes.Buffer, *bytes.Buffer, error) {
	return &bytes.Buffer{}, &bytes.Buffer{}, fmt.Errorf("interactive hooks are not supported on windows")
}
