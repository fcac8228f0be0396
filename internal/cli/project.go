package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/filter/internal/ports/primary"
	"github.com/example/filter/internal/wire"
)

// ProjectCmd returns the project command
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage filter projects",
		Long:  `Create, inspect, and delete the .filter project in the current directory.`,
	}

	cmd.AddCommand(projectCreateCmd())
	cmd.AddCommand(projectInfoCmd())
	cmd.AddCommand(projectDeleteCmd())

	return cmd
}

func projectCreateCmd() *cobra.Command {
	var repoURL string
	var path string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a filter project",
		Long: `Create the .filter structure for a directory (default: the current one).

The story prefix is derived from the directory name and registered with
this installation; a prefix already used by another project fails the
creation.

Examples:
  filter project create
  filter project create --path ~/src/widget
  filter project create --repo git@github.com:acme/widget.git`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.NewAt(path)
			if err != nil {
				return err
			}
			defer c.Close()

			info, err := c.Projects.CreateProject(cmd.Context(), primary.CreateProjectRequest{
				RepoURL: repoURL,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Created filter project %s (prefix %s)\n", info.Name, info.Prefix)
			fmt.Printf("  Stages: %s\n", joinStages(info.Stages))
			return nil
		},
	}

	cmd.Flags().StringVar(&repoURL, "repo", "", "Repository URL used for workspace provisioning")
	cmd.Flags().StringVar(&path, "path", "", "Project directory (default: current directory)")

	return cmd
}

func projectInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show project details and board occupancy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Discover()
			if err != nil {
				return err
			}
			defer c.Close()

			info, err := c.Projects.Info(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Project: %s\n", info.Name)
			fmt.Printf("Prefix: %s\n", info.Prefix)
			fmt.Printf("Path: %s\n", info.Path)
			fmt.Printf("Created: %s\n", info.CreatedAt)
			fmt.Printf("Stories: %d\n", info.TotalStories)
			fmt.Println("Stages:")
			for _, stage := range info.Stages {
				fmt.Printf("  %-14s %d\n", stage, info.StageCounts[stage])
			}
			return nil
		},
	}
}

func projectDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the filter project",
		Long: `Remove the .filter directory and unregister the project's prefix.

Projects with stories require --force. Workspace directories outside
.filter are never touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Discover()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Projects.DeleteProject(cmd.Context(), primary.DeleteProjectRequest{
				Force: force,
			}); err != nil {
				return err
			}

			fmt.Println("✓ Filter project deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even when stories exist")

	return cmd
}
