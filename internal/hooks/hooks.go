// Package hooks runs the user's post-unlock commands.
package hooks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kballard/go-shellquote"

	"github.com/drei/wdpass/internal/security"
)

// Runner executes hook commands sequentially, each under its own timeout.
type Runner struct {
	Timeout time.Duration
	DryRun  bool
	// Force skips the destructive-command check.
	Force bool
	// Interactive attaches a PTY so hooks that prompt (e.g. udisksctl with
	// polkit fallback) behave.
	Interactive bool
	// Env entries are appended to the hook's environment.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Runner with the given per-command timeout writing to the
// process's standard streams.
func New(timeout time.Duration) *Runner {
	return &Runner{
		Timeout: timeout,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// RunAll executes all commands in order and stops at the first failure.
func (r *Runner) RunAll(ctx context.Context, commands []string) error {
	for _, c := range commands {
		if err := r.Run(ctx, c); err != nil {
			return fmt.Errorf("hook %q: %w", c, err)
		}
	}
	return nil
}

// Run executes a single hook command through `bash -c` after sanitizing and
// validating it.
func (r *Runner) Run(ctx context.Context, command string) error {
	command, err := validateAndSanitize(command)
	if err != nil {
		return err
	}
	if !r.Force {
		if err := security.CheckAllowed(command); err != nil {
			return fmt.Errorf("refusing to run hook: %w", err)
		}
	}
	if r.DryRun {
		_, _ = fmt.Fprintf(r.stdout(), "dry-run: %s\n", command)
		return nil
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Env = append(os.Environ(), r.Env...)
	log.Debug("running hook", "argv", Split(command))

	if r.Interactive && stdinIsTerminal(r.stdin()) {
		_, berr, err := startWithPTY(cmd, r.stdin(), r.stdout(), r.stderr())
		if err != nil {
			return hookError(err, berr)
		}
		return nil
	}

	var bout, berr bytes.Buffer
	cmd.Stdout = io.MultiWriter(&bout, r.stdout())
	cmd.Stderr = io.MultiWriter(&berr, r.stderr())
	if err := cmd.Run(); err != nil {
		return hookError(err, &berr)
	}
	return nil
}

// stdinIsTerminal reports whether the reader is a real TTY; PTY attachment
// is pointless (and hangs io.Copy) otherwise.
func stdinIsTerminal(r io.Reader) bool {
	f, ok := r.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isTerminal(f.Fd())
}

func hookError(err error, berr *bytes.Buffer) error {
	if berr != nil {
		if msg := strings.TrimSpace(berr.String()); msg != "" {
			return fmt.Errorf("%w (stderr=%q)", err, msg)
		}
	}
	return err
}

func (r *Runner) stdin() io.Reader {
	if r.Stdin != nil {
		return r.Stdin
	}
	return os.Stdin
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// Split tokenizes a command string respecting quotes.
func Split(s string) []string {
	if toks, err := shellquote.Split(s); err == nil {
		return toks
	}
	return strings.Fields(s)
}

// sanitizeCommand normalizes common unicode characters that often get
// inserted by editors (e.g., smart quotes, NBSP, zero-width spaces) and
// converts them to their ASCII equivalents where sensible.
func sanitizeCommand(s string) string {
	r := strings.NewReplacer(
		"‘", "'", // left single quote
		"’", "'", // right single quote
		"“", "\"", // left double quote
		"”", "\"", // right double quote
		" ", " ", // NO-BREAK SPACE
		"​", "", // zero width space
		"‎", "", // left-to-right mark
		"‏", "", // right-to-left mark
	)
	rp := r.Replace(s)
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, rp)
}

func validateAndSanitize(command string) (string, error) {
	command = sanitizeCommand(command)
	if strings.Contains(command, "\n") {
		return "", fmt.Errorf("invalid hook: contains newline characters; each hook must be a single line")
	}
	if strings.IndexFunc(command, func(r rune) bool { return r == 0 || (r < 32 && r != '\t') || r == 0x7f }) != -1 {
		return "", fmt.Errorf("invalid hook: contains control characters; remove non-printable characters")
	}
	return command, nil
}
