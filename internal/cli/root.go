package cli

import (
	"github.com/spf13/cobra"

	"github.com/imkarma/planner/internal/config"
)

var flagActor string

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Event planning from reusable templates",
	Long:  "planner clones event templates into live events and tracks their tasks.\nTasks start only when the tasks they depend on are done.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(".env")
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagActor, "as", "", "Acting user id (default $PLANNER_ACTOR)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
}
