package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:     "user",
	Aliases: []string{"users"},
	Short:   "Find other users",
}

var userSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search users by email",
	Long: `Search registered users to invite.

Matches are case-insensitive substrings of the email. You are left out
of the results and at most 10 users are returned.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUserSearch,
}

func init() {
	userCmd.AddCommand(userSearchCmd)
}

func runUserSearch(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}

	users, err := s.client.SearchUsers(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	for _, u := range users {
		name := ""
		if u.Name != nil {
			name = *u.Name
		}
		fmt.Printf("  %-32s  %s\n", u.Email, name)
	}
	return nil
}
