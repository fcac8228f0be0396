package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/filter/internal/ports/primary"
	"github.com/example/filter/internal/wire"
)

// StoryCmd returns the story command
func StoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Manage stories on the kanban board",
		Long:  `Create, move, list, and delete stories. A story's stage is its link on the board.`,
	}

	cmd.AddCommand(storyCreateCmd())
	cmd.AddCommand(storyShowCmd())
	cmd.AddCommand(storyListCmd())
	cmd.AddCommand(storyMoveCmd())
	cmd.AddCommand(storyDeleteCmd())

	return cmd
}

func storyCreateCmd() *cobra.Command {
	var (
		description string
		stage       string
		repoURL     string
	)

	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a new story",
		Long: `Create a new story and link it into its initial stage.

Examples:
  filter story create "Add login form"
  filter story create "Fix flaky retry" --stage in-progress
  filter story create "Spike caching" --description "Evaluate redis vs memcache"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Discover()
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Stories.CreateStory(cmd.Context(), primary.CreateStoryRequest{
				Title:       args[0],
				Description: description,
				Stage:       stage,
				RepoURL:     repoURL,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Created story %s: %s (%s)\n", resp.Story.ID, resp.Story.Title, resp.Story.Stage)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Story description")
	cmd.Flags().StringVarP(&stage, "stage", "s", "", "Initial stage (default: first configured stage)")
	cmd.Flags().StringVar(&repoURL, "repo", "", "Repository URL overriding the project repository")

	return cmd
}

func storyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [story-id]",
		Short: "Show a story's content and state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Discover()
			if err != nil {
				return err
			}
			defer c.Close()

			detail, err := c.Stories.GetStory(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			stage := detail.Stage
			if stage == "" {
				stage = "(no stage)"
			}
			fmt.Printf("Story: %s\n", detail.ID)
			fmt.Printf("Stage: %s\n", stage)
			if detail.Workspace != nil {
				fmt.Printf("Workspace: %s (%s, branch %s)\n",
					detail.Workspace.Path, detail.Workspace.Status, detail.Workspace.Branch)
			}
			fmt.Println()
			fmt.Print(detail.Content)
			return nil
		},
	}
}

func storyListCmd() *cobra.Command {
	var stage string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stories by stage",
		Long: `List stories across the board, or one stage with --stage.

Dangling links (a board entry whose story file is gone) are reported
after the listing; they never hide the healthy entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Discover()
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Stories.ListStories(cmd.Context(), primary.ListStoriesRequest{Stage: stage})
			if err != nil {
				return err
			}

			if len(resp.Stories) == 0 && len(resp.Corruptions) == 0 {
				fmt.Println("No stories found.")
				fmt.Println()
				fmt.Println("Create your first story:")
				fmt.Println("  filter story create \"My first story\"")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tSTAGE\tTITLE\tCREATED")
			fmt.Fprintln(w, "--\t-----\t-----\t-------")
			for _, s := range resp.Stories {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Stage, s.Title, s.Created.Format("2006-01-02"))
			}
			w.Flush()

			printCorruptions(resp.Corruptions)
			return nil
		},
	}

	cmd.Flags().StringVarP(&stage, "stage", "s", "", "Only list stories in this stage")

	return cmd
}

func storyMoveCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "move [story-id] [stage]",
		Short: "Move a story to another stage",
		Long: `Move a story to another stage.

Moving a story to the stage it is already in is a no-op. With --from
the move only happens when the story is currently in that stage.

Examples:
  filter story move FILTE-1 in-progress
  filter story move FILTE-1 testing --from in-progress`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Discover()
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Board.Transition(cmd.Context(), primary.TransitionRequest{
				StoryID:   args[0],
				FromStage: from,
				ToStage:   args[1],
			})
			if err != nil {
				return err
			}

			if resp.FromStage == resp.ToStage {
				fmt.Printf("Story %s is already in %s\n", resp.StoryID, resp.ToStage)
				return nil
			}
			if resp.FromStage == "" {
				fmt.Printf("✓ Moved %s to %s\n", resp.StoryID, resp.ToStage)
				return nil
			}
			fmt.Printf("✓ Moved %s: %s → %s\n", resp.StoryID, resp.FromStage, resp.ToStage)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Require the story to currently be in this stage")

	return cmd
}

func storyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [story-id]",
		Short: "Delete a story",
		Long: `Delete a story: its stage links, its workspace (if provisioned), and
its canonical file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Discover()
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Stories.DeleteStory(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			switch len(resp.RemovedStages) {
			case 0:
				fmt.Printf("✓ Deleted story %s\n", resp.StoryID)
			case 1:
				fmt.Printf("✓ Deleted story %s (was in %s)\n", resp.StoryID, resp.RemovedStages[0])
			default:
				fmt.Printf("✓ Deleted story %s (was linked in %s)\n", resp.StoryID, joinStages(resp.RemovedStages))
			}
			if resp.HadWorkspace {
				fmt.Println("  Workspace removed")
			}
			return nil
		},
	}
}
