package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/ironboard/internal/model"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a task to the To Do column of a project.

Examples:
  ironboard task add "Write release notes"
  ironboard task add "Fix login" -a bob@example.com
  ironboard task add "Design review" -P Roadmap -d "Bring the mockups"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDescription string
	addAssignee    string
)

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Task description")
	addCmd.Flags().StringVarP(&addAssignee, "assignee", "a", "", "Assignee email or user id")
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	p, err := s.project(ctx, taskProject)
	if err != nil {
		return err
	}

	in := model.NewTaskInput{
		ProjectID: p.ID,
		Title:     strings.Join(args, " "),
	}
	if addDescription != "" {
		in.Description = &addDescription
	}
	if addAssignee != "" {
		u, err := matchMember(p, addAssignee)
		if err != nil {
			return err
		}
		in.AssigneeID = &u.ID
	}

	t, err := s.client.CreateTask(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	fmt.Printf("✓ Added to [%s]: \"%s\" (id: %s)\n", p.Name, t.Title, shortID(t.ID))
	return nil
}
