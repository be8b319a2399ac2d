package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"flowtime/internal/jira"
)

var (
	usersQuery      string
	usersAssignable bool
	usersProjects   []string
	usersBoard      int
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Look up user account IDs for the --worker filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			users []jira.User
			err   error
		)
		switch {
		case usersBoard != 0:
			users, err = jiraClient.BoardUsers(ctx, usersBoard)
		case usersAssignable:
			if len(usersProjects) == 0 {
				return fmt.Errorf("--assignable requires at least one --project")
			}
			users, err = jiraClient.AssignableUsers(ctx, usersProjects, usersQuery)
		case usersQuery != "":
			users, err = jiraClient.SearchUsers(ctx, usersQuery)
		default:
			users, err = jiraClient.Users(ctx)
		}
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Account ID", "Name", "Email", "Active"})
		for _, u := range users {
			table.Append([]string{u.AccountID, u.DisplayName, u.Email, fmt.Sprintf("%t", u.Active)})
		}
		table.Render()
		return nil
	},
}

func init() {
	usersCmd.Flags().StringVar(&usersQuery, "query", "", "match users by name or email")
	usersCmd.Flags().BoolVar(&usersAssignable, "assignable", false, "only users assignable in the given projects")
	usersCmd.Flags().StringSliceVar(&usersProjects, "project", nil, "project keys for --assignable")
	usersCmd.Flags().IntVar(&usersBoard, "board", 0, "users assignable on this board's projects")
	rootCmd.AddCommand(usersCmd)
}
