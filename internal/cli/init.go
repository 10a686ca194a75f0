package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/imkarma/planner/internal/config"
	"github.com/imkarma/planner/internal/store"
)

var (
	initOrg       string
	initAdminName string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize planner in the current directory",
	Long:  "Creates a .planner/ directory with default config, database and an administrator.",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initOrg, "org", "default", "Organization of the first administrator")
	initCmd.Flags().StringVar(&initAdminName, "admin", "admin", "Name of the first administrator")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Check if already initialized.
	if _, err := os.Stat(plannerDirName); err == nil {
		return fmt.Errorf("planner already initialized in this directory (.planner/ exists)")
	}

	if err := os.MkdirAll(plannerDirName, 0755); err != nil {
		return fmt.Errorf("create .planner: %w", err)
	}

	// Write default config.
	cfg := config.DefaultConfig()
	if err := config.Save(plannerPath("config.yaml"), cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	// Create database by opening store (migration runs automatically).
	s, err := openStore(dbPath(cfg))
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	defer s.Close()

	admin := &store.User{ID: uuid.NewString(), Name: initAdminName, Role: store.RoleAdministrator, OrgID: initOrg}
	if err := s.CreateUser(cmd.Context(), admin); err != nil {
		return fmt.Errorf("create administrator: %w", err)
	}

	fmt.Println("Initialized planner in .planner/")
	fmt.Println("")
	fmt.Printf("Administrator %s%s%s (org %s)\n", colorBold, admin.ID, colorReset, admin.OrgID)
	fmt.Println("")
	fmt.Println("Next steps:")
	fmt.Printf("  1. export PLANNER_ACTOR=%s\n", admin.ID)
	fmt.Println("  2. Run: planner template import wedding.yaml")
	fmt.Println("  3. Run: planner event create <template-id> --name ... --start 2024-06-01")
	fmt.Println("  4. Run: planner board <event-id>")

	return nil
}
