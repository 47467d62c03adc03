package cli

import (
	"fmt"

	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/tui"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive board",
	RunE:  runBoard,
}

func runBoard(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}

	logger.Info("Launching TUI")
	selected, err := tui.Run(s.client, s.cfg.UserID, s.cfg.CurrentProject)
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	if selected != "" && selected != s.cfg.CurrentProject {
		s.cfg.CurrentProject = selected
		if err := s.cfg.Save(); err != nil {
			logger.Warn("Failed to save current project", logger.Err(err))
		}
	}

	logger.Info("TUI exited normally")
	return nil
}
