package main

import (
	"context"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/filter/internal/cli"
	"github.com/example/filter/internal/ctxutil"
	"github.com/example/filter/internal/fault"
	"github.com/example/filter/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "filter",
		Short:   "filter - manage software stories as files on a kanban board",
		Version: version.String(),
		Long: `filter manages software stories as markdown files moving through kanban
stages. The board is the filesystem: each stage is a directory, each
story's position is a symlink, and git workspaces are provisioned per
story.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.ProjectCmd())
	rootCmd.AddCommand(cli.StoryCmd())
	rootCmd.AddCommand(cli.WorkspaceCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.DoctorCmd())

	// Every audit entry written during this invocation carries the same
	// correlation ID.
	inv := ctxutil.NewInvocation(strings.Join(os.Args[1:], " "))
	ctx := ctxutil.WithInvocation(context.Background(), inv)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(fault.ExitCode(err))
	}
}
