package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	failMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("[!]")
	successMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("[*]")
	questionMark = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Render("[+]")
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Fail prints msg with a red leading marker.
func Fail(format string, a ...any) {
	fmt.Printf("%s %s\n", failMark, fmt.Sprintf(format, a...))
}

// Success prints msg with a green leading marker.
func Success(format string, a ...any) {
	fmt.Printf("%s %s\n", successMark, fmt.Sprintf(format, a...))
}

// Question prints msg with a blue leading marker.
func Question(format string, a ...any) {
	fmt.Printf("%s %s\n", questionMark, fmt.Sprintf(format, a...))
}

// Title prints a highlighted heading line.
func Title(msg string) {
	TitleTo(os.Stdout, msg)
}

// TitleTo writes the heading to the provided writer (useful for tests).
func TitleTo(w io.Writer, msg string) {
	fmt.Fprintln(w, titleStyle.Render(msg))
}
