package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskflow/taskflow-api/internal/core/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo accounts and tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.close()

		res, err := service.NewSeeder(a.auth, a.users, a.taskSvc, a.log).Seed(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "users created: %d, skipped: %d, tasks created: %d\n",
			res.UsersCreated, res.UsersSkipped, res.TasksCreated)
		fmt.Fprintln(out, "\nDemo accounts:")
		for _, acc := range service.DemoAccounts {
			fmt.Fprintf(out, "  %s / %s\n", acc.Email, acc.Password)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
