package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task by its ID.

Examples:
  ironboard task delete 3f2a
  ironboard task rm 3f2a -y`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	_, t, err := findTask(ctx, s, args[0])
	if err != nil {
		return err
	}

	if s.cfg.ConfirmDelete && !deleteYes {
		fmt.Printf("About to delete: \"%s\" (ID: %s)\n", t.Title, t.ID)
		fmt.Print("Are you sure? [y/N]: ")
		confirm, _ := stdin.ReadString('\n')
		if c := strings.TrimSpace(confirm); c != "y" && c != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := s.client.DeleteTask(ctx, t.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	fmt.Printf("🗑️  Deleted: \"%s\"\n", t.Title)
	return nil
}
