package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var fieldsCustomOnly bool

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List field definitions (useful for discovering custom field IDs)",
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := jiraClient.Fields(cmd.Context())
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Name", "Type", "Custom"})
		for _, f := range fields {
			if fieldsCustomOnly && !f.Custom {
				continue
			}
			table.Append([]string{f.ID, f.Name, f.Type, fmt.Sprintf("%t", f.Custom)})
		}
		table.Render()
		return nil
	},
}

func init() {
	fieldsCmd.Flags().BoolVar(&fieldsCustomOnly, "custom", false, "only custom fields")
	rootCmd.AddCommand(fieldsCmd)
}
