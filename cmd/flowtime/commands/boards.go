package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	boardsName     string
	boardsProjects bool
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List agile boards",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		boards, err := jiraClient.Boards(ctx, boardsName)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		headers := []string{"ID", "Name", "Type"}
		if boardsProjects {
			headers = append(headers, "Projects")
		}
		table.SetHeader(headers)

		for _, b := range boards {
			row := []string{fmt.Sprintf("%d", b.ID), b.Name, b.Type}
			if boardsProjects {
				projects, err := jiraClient.BoardProjects(ctx, b.ID)
				if err != nil {
					projects = []string{b.ProjectKey}
				}
				row = append(row, strings.Join(projects, ", "))
			}
			table.Append(row)
		}
		table.Render()
		return nil
	},
}

func init() {
	boardsCmd.Flags().StringVar(&boardsName, "name", "", "filter boards by name")
	boardsCmd.Flags().BoolVar(&boardsProjects, "projects", false, "resolve and show each board's project keys")
	rootCmd.AddCommand(boardsCmd)
}
