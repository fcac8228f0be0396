package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/filter/internal/ports/primary"
	"github.com/example/filter/internal/wire"
)

var (
	stageColor = color.New(color.FgCyan, color.Bold)
	dimColor   = color.New(color.Faint)
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the kanban board",
		Long: `Display every stage with its stories, plus workspace state where one
exists. This is the "where is everything right now?" view.`,
		Args: cobra.NoArgs,
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

			workspaces, err := c.Workspaces.List(cmd.Context())
			if err != nil {
				return err
			}
			wsByStory := make(map[string]*primary.WorkspaceView, len(workspaces))
			for _, ws := range workspaces {
				wsByStory[ws.StoryID] = ws
			}

			fmt.Printf("%s (%s) - %d stories\n\n", info.Name, info.Prefix, info.TotalStories)

			var corruptions []primary.Corruption
			for _, stage := range info.Stages {
				listing, err := c.Board.ListStage(cmd.Context(), stage)
				if err != nil {
					return err
				}
				corruptions = append(corruptions, listing.Corruptions...)

				stageColor.Printf("%s", stage)
				dimColor.Printf(" (%d)\n", len(listing.Stories))
				if len(listing.Stories) == 0 {
					dimColor.Println("  (empty)")
				}
				for _, s := range listing.Stories {
					fmt.Printf("  %s  %s", s.ID, s.Title)
					if ws, ok := wsByStory[s.ID]; ok {
						dimColor.Printf("  [workspace: %s]", ws.Status)
					}
					fmt.Println()
				}
				fmt.Println()
			}

			printCorruptions(corruptions)
			return nil
		},
	}
}
