package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/imkarma/planner/internal/lifecycle"
	"github.com/imkarma/planner/internal/store"
)

var (
	userRole string
	userOrg  string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a user to an organization",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUserAdd,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users of your organization",
	RunE:  runUserList,
}

func init() {
	userAddCmd.Flags().StringVarP(&userRole, "role", "r", "VENDOR", "Role: ADMINISTRATOR, MANAGER, VENDOR, CLIENT")
	userAddCmd.Flags().StringVar(&userOrg, "org", "", "Organization (default: the acting user's)")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
}

// currentUser resolves the acting user.
func currentUser(a *app, cmd *cobra.Command) (*store.User, error) {
	id, err := actorID()
	if err != nil {
		return nil, err
	}
	u, err := a.store.GetUser(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("unknown actor %s", id)
	}
	return u, nil
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	me, err := currentUser(a, cmd)
	if err != nil {
		return err
	}
	if !lifecycle.IsPrivileged(me.Role) {
		return fmt.Errorf("only managers and administrators may add users")
	}

	role := store.Role(strings.ToUpper(userRole))
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", userRole)
	}
	org := userOrg
	if org == "" {
		org = me.OrgID
	}
	if org != me.OrgID && me.Role != store.RoleAdministrator {
		return fmt.Errorf("only administrators may add users to another organization")
	}

	u := &store.User{ID: uuid.NewString(), Name: strings.Join(args, " "), Role: role, OrgID: org}
	if err := a.store.CreateUser(cmd.Context(), u); err != nil {
		return err
	}
	fmt.Printf("Added %s%s%s %s [%s]\n", colorBold, u.ID, colorReset, u.Name, u.Role)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	me, err := currentUser(a, cmd)
	if err != nil {
		return err
	}
	users, err := a.store.ListUsers(cmd.Context(), me.OrgID)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Printf("  %s  %-14s %s\n", u.ID, u.Role, u.Name)
	}
	return nil
}
