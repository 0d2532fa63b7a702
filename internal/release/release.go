// Package release models the operator-facing release checklist so the
// documented process and the notes in PUBLISHING.md cannot drift apart
// unnoticed.
package release

import (
	"fmt"
	"strings"
)

// Step is one stage of the release process.
type Step struct {
	Title    string
	Commands []string
	Optional bool
}

// Checklist returns the release steps in order: install the upload tool,
// build the distribution artifacts, upload them to the staging repository,
// optionally test-install from staging (pinned to a version if needed),
// then upload to the production repository.
func Checklist() []Step {
	return []Step{
		{
			Title: "Install the upload tool",
			Commands: []string{
				"go install github.com/cli/cli/v2/cmd/gh@latest",
			},
		},
		{
			Title: "Build the distribution artifacts",
			Commands: []string{
				"scripts/release.sh vX.Y.Z",
			},
		},
		{
			Title: "Upload the artifacts to the staging repository",
			Commands: []string{
				"gh release create vX.Y.Z --prerelease --repo drei/wdpass-staging dist/*",
			},
		},
		{
			Title:    "Verify the staged artifacts by installing from staging",
			Optional: true,
			Commands: []string{
				"gh release download vX.Y.Z --repo drei/wdpass-staging --pattern 'wdpass-vX.Y.Z-linux-amd64.tar.gz'",
				"tar -xzf wdpass-vX.Y.Z-linux-amd64.tar.gz && sudo install wdpass /usr/local/bin/",
				"wdpass version",
			},
		},
		{
			Title: "Upload the artifacts to the production repository",
			Commands: []string{
				"gh release create vX.Y.Z --repo drei/wdpass dist/*",
			},
		},
	}
}

// RenderMarkdown renders the checklist as the body of PUBLISHING.md.
func RenderMarkdown() string {
	var b strings.Builder
	b.WriteString("# Publishing\n\n")
	b.WriteString("Release checklist for wdpass. Run the steps in order; the staging\n")
	b.WriteString("upload and verification catch packaging mistakes before anything\n")
	b.WriteString("reaches the production repository.\n")
	for i, s := range Checklist() {
		title := s.Title
		if s.Optional {
			title += " (optional)"
		}
		fmt.Fprintf(&b, "\n## %d. %s\n\n", i+1, title)
		b.WriteString("```sh\n")
		for _, c := range s.Commands {
			b.WriteString(c + "\n")
		}
		b.WriteString("```\n")
	}
	return b.String()
}
