package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/filter/internal/tmux"
	"github.com/example/filter/internal/wire"
)

// WorkspaceCmd returns the workspace command
func WorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage story workspaces",
		Long: `Provision and tear down per-story working trees.

A workspace is a clone of the story's repository on a story branch,
created idempotently: provisioning a ready workspace is a no-op, and a
failed or interrupted provisioning is retried from scratch.`,
	}

	cmd.AddCommand(workspaceProvisionCmd())
	cmd.AddCommand(workspaceListCmd())
	cmd.AddCommand(workspaceTeardownCmd())
	cmd.AddCommand(workspaceAttachCmd())

	return cmd
}

func workspaceProvisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision [story-id]",
		Short: "Provision a story's workspace",
		Long: `Clone the story's repository, check out its branch, and scaffold the
working tree.

Examples:
  filter workspace provision FILTE-1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Discover()
			if err != nil {
				return err
			}
			defer c.Close()

			ws, err := c.Workspaces.Provision(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("✓ Workspace ready: %s\n", ws.Path)
			fmt.Printf("  Branch: %s\n", ws.Branch)
			return nil
		},
	}
}

func workspaceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Discover()
			if err != nil {
				return err
			}
			defer c.Close()

			views, err := c.Workspaces.List(cmd.Context())
			if err != nil {
				return err
			}

			if len(views) == 0 {
				fmt.Println("No workspaces found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "STORY\tSTATUS\tBRANCH\tPATH")
			fmt.Fprintln(w, "-----\t------\t------\t----")
			for _, ws := range views {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ws.StoryID, ws.Status, ws.Branch, ws.Path)
			}
			w.Flush()
			return nil
		},
	}
}

func workspaceTeardownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teardown [story-id]",
		Short: "Remove a story's workspace",
		Long: `Remove the working tree and the workspace record. The story and its
board state are untouched. Tearing down a story without a workspace is
a no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Discover()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Workspaces.Teardown(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Printf("✓ Workspace for %s removed\n", args[0])
			return nil
		},
	}
}

func workspaceAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach [story-id]",
		Short: "Open a tmux session in a story's workspace",
		Long: `Open (or reuse) a tmux session rooted at the story's workspace.

The workspace must be ready; run 'filter workspace provision' first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Discover()
			if err != nil {
				return err
			}
			defer c.Close()

			storyID := args[0]
			ws, err := c.Workspaces.Get(cmd.Context(), storyID)
			if err != nil {
				return err
			}
			if ws == nil || ws.Status != "ready" {
				return fmt.Errorf("story %s has no ready workspace; run 'filter workspace provision %s' first", storyID, storyID)
			}

			sessions, err := c.Sessions()
			if err != nil {
				return err
			}

			name := tmux.SessionName(storyID)
			if !sessions.SessionExists(cmd.Context(), name) {
				if err := sessions.CreateSession(cmd.Context(), name, ws.Path); err != nil {
					return err
				}
				fmt.Printf("✓ Created session %s\n", name)
			}
			fmt.Println(sessions.AttachInstructions(name))
			return nil
		},
	}
}
