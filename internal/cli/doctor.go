package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/filter/internal/config"
	filterctx "github.com/example/filter/internal/context"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the filter environment",
		Long: `Environment health check for filter.

Validates:
- git availability (required for workspaces)
- gh availability (optional, used for PR workflows)
- tmux availability (optional, used by workspace attach)
- Project structure (.filter/, config.yml, stage directories)
- Project registry readability

Examples:
  filter doctor              # Run full health check
  filter doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{
				checkBinary("git", true),
				checkBinary("gh", false),
				checkBinary("tmux", false),
				checkProject(),
				checkRegistry(),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()

				hasDetails := false
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						if !hasDetails {
							fmt.Println("Details:")
							hasDetails = true
						}
						fmt.Printf("\n%s:\n%s\n", r.Name, r.Details)
					}
				}

				if hasErrors {
					fmt.Println("\n⚠ Issues found.")
				} else {
					fmt.Println("All checks passed.")
				}
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

// checkBinary validates that a tool is installed and on PATH.
func checkBinary(name string, required bool) CheckResult {
	result := CheckResult{Name: name}
	if _, err := exec.LookPath(name); err != nil {
		if required {
			result.Status = "✗"
			result.Details = fmt.Sprintf("  %s not found on PATH", name)
		} else {
			result.Status = "⚠"
			result.Details = fmt.Sprintf("  %s not found on PATH (optional)", name)
		}
		return result
	}
	result.Status = "✓"
	return result
}

// checkProject validates the .filter structure of the enclosing project.
func checkProject() CheckResult {
	result := CheckResult{Name: "Project"}

	root, err := filterctx.FindProjectRootFromCwd()
	if err != nil {
		result.Status = "⚠"
		result.Details = "  Not inside a filter project (run 'filter project create')"
		return result
	}

	cfg, err := config.LoadProjectConfig(config.ProjectConfigPath(root), filepath.Base(root))
	if err != nil {
		result.Status = "✗"
		result.Details = fmt.Sprintf("  %v", err)
		return result
	}

	var missing []string
	filterDir := filepath.Join(root, config.FilterDirName)
	for _, dir := range []string{"stories", "kanban", "locks", "workspaces"} {
		if _, err := os.Stat(filepath.Join(filterDir, dir)); err != nil {
			missing = append(missing, dir)
		}
	}
	for _, stage := range cfg.KanbanStages {
		if _, err := os.Stat(filepath.Join(filterDir, "kanban", stage)); err != nil {
			missing = append(missing, "kanban/"+stage)
		}
	}
	if len(missing) > 0 {
		result.Status = "✗"
		result.Details = "  Missing directories: " + strings.Join(missing, ", ")
		return result
	}

	result.Status = "✓"
	return result
}

// checkRegistry validates the installation-wide project registry.
func checkRegistry() CheckResult {
	result := CheckResult{Name: "Registry"}
	if _, err := config.LoadRegistry(config.RegistryPath()); err != nil {
		result.Status = "✗"
		result.Details = fmt.Sprintf("  %v", err)
		return result
	}
	result.Status = "✓"
	return result
}
