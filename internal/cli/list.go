package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/ironboard/internal/model"
)

func printProjectHeader(p *model.Project) {
	fmt.Printf("\n📁 %s  (id: %s)\n", p.Name, shortID(p.ID))
	if p.Description != nil && *p.Description != "" {
		fmt.Printf("   %s\n", *p.Description)
	}
	fmt.Printf("   owner: %s", p.Owner.Email)
	if len(p.Memberships) > 0 {
		emails := make([]string, 0, len(p.Memberships))
		for _, m := range p.Memberships {
			emails = append(emails, m.User.Email)
		}
		fmt.Printf("   members: %s", strings.Join(emails, ", "))
	}
	fmt.Println()
}

// groupByStatus buckets tasks per column, keeping their order
func groupByStatus(tasks []model.Task) map[model.Status][]model.Task {
	cols := make(map[model.Status][]model.Task, len(model.Statuses))
	for _, t := range tasks {
		cols[t.Status] = append(cols[t.Status], t)
	}
	return cols
}

func printBoard(tasks []model.Task) {
	cols := groupByStatus(tasks)
	for _, st := range model.Statuses {
		fmt.Printf("\n%s %s (%d)\n", statusIcon(st), st.Label(), len(cols[st]))
		fmt.Println(strings.Repeat("─", 60))
		if len(cols[st]) == 0 {
			fmt.Println("  (empty)")
			continue
		}
		for _, t := range cols[st] {
			printTask(t)
		}
	}
	fmt.Println()
}

func statusIcon(st model.Status) string {
	switch st {
	case model.StatusDone:
		return "[x]"
	case model.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

func printTask(t model.Task) {
	assignee := ""
	if t.Assignee != nil {
		assignee = "@" + t.Assignee.Email
	}
	fmt.Printf("  %-8s  %-40s  %s\n", shortID(t.ID), truncate(t.Title, 40), assignee)
}
