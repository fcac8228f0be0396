// Package context locates the filter project for the current invocation.
package context

import (
	"os"
	"path/filepath"

	"github.com/example/filter/internal/config"
	"github.com/example/filter/internal/fault"
)

// FindProjectRoot walks up from startDir looking for a .filter directory and
// returns the directory containing it. Commands other than project create
// refuse to run outside a project.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		info, err := os.Stat(filepath.Join(dir, config.FilterDirName))
		if err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fault.Validationf(
				"no filter project found in %s or any parent directory. Run 'filter project create' first", startDir)
		}
		dir = parent
	}
}

// FindProjectRootFromCwd discovers the project root starting at the working
// directory.
func FindProjectRootFromCwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindProjectRoot(cwd)
}
