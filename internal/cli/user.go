package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/pufflog/pufflog/internal/domain"
)

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userBlockCmd)
	userCmd.AddCommand(userUnblockCmd)

	userAddCmd.Flags().String("password", "", "initial password (required)")
	userAddCmd.Flags().Bool("admin", false, "grant the ADMIN role")
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

// ─── user add ───────────────────────────────────────────────────────────────

var userAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Provision an account",
	Long:  `Create an account. New accounts receive the one-time welcome XP bonus.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		return fmt.Errorf("a password is required: pufflog user add %s --password <pw>", args[0])
	}
	admin, _ := cmd.Flags().GetBool("admin")
	role := domain.RoleMember
	if admin {
		role = domain.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	db, svc, err := openEconomy()
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := svc.ProvisionUser(args[0], string(hash), role)
	if err != nil {
		return fmt.Errorf("provision user: %w", err)
	}
	fmt.Fprintf(os.Stdout, "created %s %s (%s)\n", user.Role, user.Name, user.ID)
	return nil
}

// ─── user list ──────────────────────────────────────────────────────────────

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts with balances",
	RunE:  runUserList,
}

func runUserList(cmd *cobra.Command, args []string) error {
	db, svc, err := openEconomy()
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := db.ListUsers()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tROLE\tXP\tBLOCKED\tID")
	for _, u := range users {
		balance, err := svc.Balance(u.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%s\n", u.Name, u.Role, balance, u.Blocked, u.ID)
	}
	return w.Flush()
}

// ─── user block / unblock ───────────────────────────────────────────────────

var userBlockCmd = &cobra.Command{
	Use:   "block NAME",
	Short: "Block an account from submitting requests",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setBlocked(args[0], true) },
}

var userUnblockCmd = &cobra.Command{
	Use:   "unblock NAME",
	Short: "Unblock an account",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setBlocked(args[0], false) },
}

func setBlocked(name string, blocked bool) error {
	db, _, err := openEconomy()
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := db.GetUserByName(name)
	if err != nil {
		return fmt.Errorf("user %q: %w", name, err)
	}
	if err := db.SetUserBlocked(user.ID, blocked); err != nil {
		return err
	}
	state := "unblocked"
	if blocked {
		state = "blocked"
	}
	fmt.Fprintf(os.Stdout, "%s %s\n", state, name)
	return nil
}
