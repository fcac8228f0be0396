package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/example/filter/internal/ports/primary"
)

var warnColor = color.New(color.FgYellow)

func joinStages(stages []string) string {
	return strings.Join(stages, ", ")
}

// printCorruptions reports recoverable board inconsistencies after the
// regular output, on stderr so pipelines keep working.
func printCorruptions(corruptions []primary.Corruption) {
	if len(corruptions) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr)
	warnColor.Fprintf(os.Stderr, "⚠ %d board inconsistencies found:\n", len(corruptions))
	for _, c := range corruptions {
		fmt.Fprintf(os.Stderr, "  %s in %s: %s\n", c.StoryID, c.Stage, c.Detail)
	}
}
