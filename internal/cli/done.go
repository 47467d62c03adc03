package cli

import (
	"fmt"

	"github.com/existflow/ironboard/internal/model"
	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move [task-id] [status]",
	Short: "Move a task to another column",
	Long: `Move a task to TODO, IN_PROGRESS or DONE.

Use "next" or "prev" to shift one column.

Examples:
  ironboard task move 3f2a in_progress
  ironboard task move 3f2a next`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as done",
	Long: `Move a task to the Done column.

Examples:
  ironboard task done 3f2a
  ironboard task done 3f2a --undo`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

var doneUndo bool

func init() {
	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "Move the task back to To Do")
}

// targetStatus resolves a status argument relative to the current one
func targetStatus(current model.Status, arg string) (model.Status, error) {
	switch arg {
	case "next", "right":
		return current.Next(), nil
	case "prev", "left":
		return current.Prev(), nil
	}
	return model.ParseStatus(arg)
}

func runMove(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	_, t, err := findTask(ctx, s, args[0])
	if err != nil {
		return err
	}

	status, err := targetStatus(t.Status, args[1])
	if err != nil {
		return err
	}
	if status == t.Status {
		fmt.Printf("\"%s\" is already in %s\n", t.Title, status.Label())
		return nil
	}

	updated, err := s.client.MoveTask(ctx, t.ID, status)
	if err != nil {
		return fmt.Errorf("failed to move task: %w", err)
	}

	fmt.Printf("→ %s: \"%s\"\n", updated.Status.Label(), updated.Title)
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	_, t, err := findTask(ctx, s, args[0])
	if err != nil {
		return err
	}

	status := model.StatusDone
	if doneUndo {
		status = model.StatusTodo
	}

	if _, err := s.client.MoveTask(ctx, t.ID, status); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if doneUndo {
		fmt.Printf("○ Reopened: \"%s\"\n", t.Title)
	} else {
		fmt.Printf("✓ Completed: \"%s\"\n", t.Title)
	}
	return nil
}
