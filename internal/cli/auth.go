package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/existflow/ironboard/internal/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Register, log in and out of an IronBoard server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the server",
	Long: `Log in with email and password, or with a magic link.

Examples:
  ironboard auth login
  ironboard auth login --magic me@example.com
  ironboard auth login --token <magic-link-token>`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the session",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE:  runWhoami,
}

// stdin is shared so prompts read in order when input is piped
var stdin = bufio.NewReader(os.Stdin)

var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(syscall.Stdin))
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().String("magic", "", "Request a magic link for this email")
	loginCmd.Flags().String("token", "", "Verify magic link token")
	registerCmd.Flags().String("name", "", "Display name")
}

func runLogin(cmd *cobra.Command, args []string) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	email, _ := cmd.Flags().GetString("magic")
	token, _ := cmd.Flags().GetString("token")

	if token != "" {
		return verifyMagicLink(ctx, s, token)
	}

	if email != "" {
		fmt.Printf("🔄 Requesting magic link for %s...\n", email)
		msg, devToken, err := s.client.RequestMagicLink(ctx, email)
		if err != nil {
			return err
		}
		fmt.Printf("📬 %s\n", msg)
		if devToken != "" {
			fmt.Printf("🔑 Development token: %s\n", devToken)
		}

		fmt.Print("Enter magic link token: ")
		inputToken, _ := stdin.ReadString('\n')
		inputToken = strings.TrimSpace(inputToken)
		if inputToken == "" {
			fmt.Println("❌ Token required.")
			return nil
		}
		return verifyMagicLink(ctx, s, inputToken)
	}

	fmt.Print("Email: ")
	email, _ = stdin.ReadString('\n')
	email = strings.TrimSpace(email)

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	fmt.Println("🔄 Logging in...")
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.adopt(res); err != nil {
		return err
	}

	fmt.Printf("✅ Logged in as %s\n", res.User.Email)
	return nil
}

func verifyMagicLink(ctx context.Context, s *session, token string) error {
	fmt.Println("🔄 Verifying magic link...")
	res, err := s.client.VerifyMagicLink(ctx, token)
	if err != nil {
		return err
	}
	if err := s.adopt(res); err != nil {
		return err
	}
	fmt.Printf("✅ Logged in as %s\n", res.User.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}

	if !s.cfg.LoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Println("🔄 Logging out...")
	if err := s.client.Logout(cmd.Context()); err != nil {
		// The local session is dropped either way
		logger.Warn("Server logout failed", logger.Err(err))
	}

	s.cfg.ClearSession()
	if err := s.cfg.Save(); err != nil {
		return err
	}

	fmt.Println("✅ Logged out successfully.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}

	fmt.Print("Email: ")
	email, _ := stdin.ReadString('\n')
	email = strings.TrimSpace(email)

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm Password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	var name *string
	if n, _ := cmd.Flags().GetString("name"); n != "" {
		name = &n
	}

	fmt.Println("🔄 Creating account...")
	res, err := s.client.Register(cmd.Context(), email, password, name)
	if err != nil {
		return err
	}
	if err := s.adopt(res); err != nil {
		return err
	}

	fmt.Println("✅ Account created and logged in!")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}

	me, err := s.client.Me(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("👤 %s", me.Email)
	if me.Name != nil {
		fmt.Printf(" (%s)", *me.Name)
	}
	fmt.Printf("\n   server: %s\n", s.client.BaseURL())
	if s.cfg.CurrentProject != "" {
		fmt.Printf("   project: %s\n", s.cfg.CurrentProject)
	}
	return nil
}

// promptPassword reads a password without echo when stdin is a terminal
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	if !stdinIsTerminal() {
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
