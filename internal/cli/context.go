package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var useCmd = &cobra.Command{
	Use:   "use [project]",
	Short: "Select the current project",
	Long: `Set or view the current project.

Commands that take a project fall back to the current one.

Examples:
  ironboard use              # Show current project
  ironboard use Roadmap      # Select by name
  ironboard use 3f2a         # Select by id prefix
  ironboard use --clear      # Forget the selection`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUse,
}

var useClear bool

func init() {
	useCmd.Flags().BoolVar(&useClear, "clear", false, "Clear the current project")
}

func runUse(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if useClear {
		s.cfg.CurrentProject = ""
		if err := s.cfg.Save(); err != nil {
			return err
		}
		fmt.Println("✓ Cleared current project")
		return nil
	}

	if len(args) == 0 {
		if s.cfg.CurrentProject == "" {
			fmt.Println("No project selected. Pick one with: ironboard use <project>")
			return nil
		}
		p, err := s.project(ctx, "")
		if err != nil {
			fmt.Printf("⚠️  Current project '%s' is no longer available\n", s.cfg.CurrentProject)
			return nil
		}
		summary, err := s.client.ProjectAnalytics(ctx, p.ID)
		if err != nil {
			return err
		}
		fmt.Printf("📁 Current project: %s (%d/%d done)\n", p.Name, summary.Done, summary.Total)
		return nil
	}

	projects, err := s.client.ListProjects(ctx)
	if err != nil {
		return err
	}
	p, err := matchProject(projects, args[0])
	if err != nil {
		return err
	}

	s.cfg.CurrentProject = p.ID
	if err := s.cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("📁 Switched to: %s\n", p.Name)
	return nil
}
