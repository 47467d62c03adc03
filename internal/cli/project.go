package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/existflow/ironboard/internal/model"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects", "p"},
	Short:   "Manage projects",
	Long:    `Create, list, share and delete projects.`,
}

var projectNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a new project",
	Long: `Create a new project owned by you.

Examples:
  ironboard project new "Roadmap"
  ironboard project new "Launch" -d "Everything for the Q3 launch"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProjectNew,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects you own or belong to",
	RunE:    runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show [project]",
	Short: "Show a project's board",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProjectShow,
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete [project]",
	Aliases: []string{"rm"},
	Short:   "Delete a project you own",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runProjectDelete,
}

var projectInviteCmd = &cobra.Command{
	Use:   "invite [email]",
	Short: "Invite a registered user to a project you own",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectInvite,
}

var projectKickCmd = &cobra.Command{
	Use:   "kick [email|user-id]",
	Short: "Remove a member from a project you own",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectKick,
}

var projectExportCmd = &cobra.Command{
	Use:   "export [project]",
	Short: "Export a project as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProjectExport,
}

var projectStatsCmd = &cobra.Command{
	Use:   "stats [project]",
	Short: "Show task counts per column",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProjectStats,
}

var (
	projectDescription string
	projectRef         string
	projectYes         bool
	exportOutput       string
)

func init() {
	projectNewCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "Project description")
	projectDeleteCmd.Flags().BoolVarP(&projectYes, "yes", "y", false, "Do not ask for confirmation")
	projectExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	for _, c := range []*cobra.Command{projectInviteCmd, projectKickCmd} {
		c.Flags().StringVarP(&projectRef, "project", "P", "", "Project (defaults to the current one)")
	}

	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectInviteCmd)
	projectCmd.AddCommand(projectKickCmd)
	projectCmd.AddCommand(projectExportCmd)
	projectCmd.AddCommand(projectStatsCmd)
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func runProjectNew(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}

	var desc *string
	if projectDescription != "" {
		desc = &projectDescription
	}

	p, err := s.client.CreateProject(cmd.Context(), strings.Join(args, " "), desc)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	fmt.Printf("✓ Created project: %s (id: %s)\n", p.Name, shortID(p.ID))
	if s.cfg.CurrentProject == "" {
		s.cfg.CurrentProject = p.ID
		if err := s.cfg.Save(); err == nil {
			fmt.Printf("📁 Switched to: %s\n", p.Name)
		}
	}
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}

	projects, err := s.client.ListProjects(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if len(projects) == 0 {
		fmt.Println("No projects yet. Create one with: ironboard project new \"Name\"")
		return nil
	}

	fmt.Println()
	fmt.Printf("  %-8s  %-24s  %-8s  %-7s  %s\n", "ID", "Name", "Role", "Members", "Tasks")
	fmt.Println(strings.Repeat("─", 62))

	for _, p := range projects {
		marker := "  "
		if p.ID == s.cfg.CurrentProject {
			marker = "❯ "
		}
		role := "member"
		if p.IsOwner(s.cfg.UserID) {
			role = "owner"
		}
		fmt.Printf("%s%-8s  %-24s  %-8s  %-7d  %d\n",
			marker, shortID(p.ID), truncate(p.Name, 24), role, len(p.Memberships)+1, p.TaskCount)
	}

	fmt.Println(strings.Repeat("─", 62))
	fmt.Printf("  %d projects\n\n", len(projects))
	return nil
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}

	p, err := s.project(cmd.Context(), argOrEmpty(args))
	if err != nil {
		return err
	}

	printProjectHeader(p)
	printBoard(p.Tasks)
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	p, err := s.project(ctx, argOrEmpty(args))
	if err != nil {
		return err
	}
	if !p.IsOwner(s.cfg.UserID) {
		return fmt.Errorf("only the owner can delete %s", p.Name)
	}

	if s.cfg.ConfirmDelete && !projectYes {
		fmt.Printf("About to delete %q with %d tasks and %d members.\n", p.Name, len(p.Tasks), len(p.Memberships))
		fmt.Print("Are you sure? [y/N]: ")
		confirm, _ := stdin.ReadString('\n')
		if c := strings.TrimSpace(confirm); c != "y" && c != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := s.client.DeleteProject(ctx, p.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if s.cfg.CurrentProject == p.ID {
		s.cfg.CurrentProject = ""
		_ = s.cfg.Save()
	}

	fmt.Printf("🗑️  Deleted project: %s\n", p.Name)
	return nil
}

func runProjectInvite(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	p, err := s.project(ctx, projectRef)
	if err != nil {
		return err
	}

	m, err := s.client.InviteMember(ctx, p.ID, args[0])
	if err != nil {
		return fmt.Errorf("failed to invite: %w", err)
	}

	fmt.Printf("✓ %s can now see %s\n", m.User.Email, p.Name)
	return nil
}

func runProjectKick(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	p, err := s.project(ctx, projectRef)
	if err != nil {
		return err
	}

	u, err := matchMember(p, args[0])
	if err != nil {
		return err
	}
	if u.ID == p.OwnerID {
		return fmt.Errorf("the owner cannot be removed")
	}

	if err := s.client.RemoveMember(ctx, p.ID, u.ID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	fmt.Printf("✓ Removed %s from %s\n", u.Email, p.Name)
	return nil
}

func runProjectExport(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	p, err := s.project(ctx, argOrEmpty(args))
	if err != nil {
		return err
	}

	export, err := s.client.ExportProject(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if exportOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(exportOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Printf("✓ Exported %s to %s\n", p.Name, exportOutput)
	return nil
}

func runProjectStats(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	p, err := s.project(ctx, argOrEmpty(args))
	if err != nil {
		return err
	}

	summary, err := s.client.ProjectAnalytics(ctx, p.ID)
	if err != nil {
		return err
	}

	fmt.Printf("\n📊 %s (%d tasks)\n", p.Name, summary.Total)
	fmt.Println(strings.Repeat("─", 50))
	for _, st := range model.Statuses {
		fmt.Printf("  %-12s %s %3d%%  (%d)\n", st.Label(), bar(summary.Percent(st), 20), summary.Percent(st), summary.Count(st))
	}
	fmt.Println()
	return nil
}

// bar renders pct (0-100) as a fixed-width bar
func bar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
