package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/ironboard/internal/model"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks", "t"},
	Short:   "Manage tasks on a board",
	Long: `Add, move, assign and delete tasks.

Tasks are looked up in the current project unless --project is given.
Task ids can be shortened to any unique prefix.`,
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks by column",
	RunE:    runTaskList,
}

var taskAssignCmd = &cobra.Command{
	Use:   "assign [task-id] [email]",
	Short: "Assign a task to a project member",
	Long: `Assign a task to the owner or a member of its project.

Examples:
  ironboard task assign 3f2a bob@example.com
  ironboard task assign 3f2a --none`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTaskAssign,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Change a task's title or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var (
	taskProject     string
	assignNone      bool
	editTitle       string
	editDescription string
)

func init() {
	taskCmd.PersistentFlags().StringVarP(&taskProject, "project", "P", "", "Project (defaults to the current one)")
	taskAssignCmd.Flags().BoolVar(&assignNone, "none", false, "Remove the assignee")
	taskEditCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	taskEditCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description (empty string clears it)")

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(addCmd)
	taskCmd.AddCommand(moveCmd)
	taskCmd.AddCommand(doneCmd)
	taskCmd.AddCommand(taskAssignCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(deleteCmd)
}

// findTask loads the task's project and resolves ref inside it
func findTask(ctx context.Context, s *session, ref string) (*model.Project, *model.Task, error) {
	p, err := s.project(ctx, taskProject)
	if err != nil {
		return nil, nil, err
	}
	t, err := matchTask(p.Tasks, ref)
	if err != nil {
		return nil, nil, err
	}
	return p, t, nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}

	p, err := s.project(cmd.Context(), taskProject)
	if err != nil {
		return err
	}

	if len(p.Tasks) == 0 {
		fmt.Printf("No tasks in %s. Add one with: ironboard task add \"Title\"\n", p.Name)
		return nil
	}
	printProjectHeader(p)
	printBoard(p.Tasks)
	return nil
}

func runTaskAssign(cmd *cobra.Command, args []string) error {
	if len(args) == 1 && !assignNone {
		return fmt.Errorf("give an email or --none")
	}

	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	p, t, err := findTask(ctx, s, args[0])
	if err != nil {
		return err
	}

	var patch model.TaskPatch
	if assignNone {
		patch.AssigneeID = model.Null[string]()
	} else {
		u, err := matchMember(p, args[1])
		if err != nil {
			return err
		}
		patch.AssigneeID = model.Some(u.ID)
	}

	updated, err := s.client.UpdateTask(ctx, t.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to assign task: %w", err)
	}

	if updated.Assignee == nil {
		fmt.Printf("✓ Unassigned: \"%s\"\n", updated.Title)
	} else {
		fmt.Printf("✓ Assigned \"%s\" to %s\n", updated.Title, updated.Assignee.Email)
	}
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	var patch model.TaskPatch
	if cmd.Flags().Changed("title") {
		patch.Title = model.Some(strings.TrimSpace(editTitle))
	}
	if cmd.Flags().Changed("description") {
		if editDescription == "" {
			patch.Description = model.Null[string]()
		} else {
			patch.Description = model.Some(editDescription)
		}
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to change, use --title or --description")
	}

	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	_, t, err := findTask(ctx, s, args[0])
	if err != nil {
		return err
	}

	updated, err := s.client.UpdateTask(ctx, t.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	fmt.Printf("✓ Updated: \"%s\"\n", updated.Title)
	return nil
}
