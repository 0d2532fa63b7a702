// Package security provides security-related utilities.
package security

import (
	"errors"
	"regexp"
	"strings"
)

// Unlock hooks run as root right after a drive becomes readable, so screen
// out commands that would immediately destroy what was just unlocked.
var dangerousPatterns = []*regexp.Regexp{
	// Destructive filesystem ops
	regexp.MustCompile(`(?i)\brm\s+-rf\s+/?$`),
	regexp.MustCompile(`(?i)\brm\s+-rf\s+/`),
	regexp.MustCompile(`(?i)\bmkfs\b`),
	regexp.MustCompile(`(?i)\bdd\s+if=`),
	// fork bombs (e.g. :(){ :|:& };:)
	regexp.MustCompile(`:\(\)\s*\{`),
	// wipe disk
	regexp.MustCompile(`(?i)\bwipefs\b`),
	regexp.MustCompile(`(?i)\bshred\b`),
	// repartitioning
	regexp.MustCompile(`(?i)\bsfdisk\b`),
	regexp.MustCompile(`(?i)\bparted\s+.*\bmklabel\b`),
}

// CheckAllowed returns nil if the hook command is allowed to run, or an
// error describing why it's blocked. Checking is conservative and not
// exhaustive.
func CheckAllowed(command string) error {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return errors.New("empty command")
	}
	for _, re := range dangerousPatterns {
		if re.MatchString(cmd) {
			return errors.New("command appears destructive or unsafe")
		}
	}
	return nil
}
