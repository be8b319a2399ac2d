package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"flowtime/internal/cycletime"
)

var (
	issueWorker  string
	issueExplain bool
	issueJSON    bool
)

type issueReport struct {
	Result   cycletime.Result        `json:"result"`
	Strategy *cycletime.StrategyInfo `json:"strategy,omitempty"`
}

var issueCmd = &cobra.Command{
	Use:   "issue KEY...",
	Short: "Cycle time for individual issues",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var reports []issueReport
		for _, key := range args {
			histories, err := jiraClient.Changelog(ctx, key)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", key, err)
			}

			report := issueReport{Result: engine.Calculate(histories, key, issueWorker)}
			if issueExplain {
				info := engine.Strategy(histories, issueWorker)
				report.Strategy = &info
			}
			reports = append(reports, report)
		}

		if issueJSON {
			return json.NewEncoder(os.Stdout).Encode(reports)
		}
		renderIssues(reports)
		return nil
	},
}

func renderIssues(reports []issueReport) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Issue", "In Progress", "Done", "Active (d)", "Excluded (d)", "Impediment (d)"})
	for _, r := range reports {
		table.Append([]string{
			r.Result.IssueKey,
			formatInstant(r.Result.InProgressAt),
			formatInstant(r.Result.DoneAt),
			formatDays(r.Result.Seconds),
			formatDays(r.Result.ExcludedSeconds),
			formatDays(r.Result.ImpedimentSeconds),
		})
	}
	table.Render()

	if !issueExplain {
		return
	}
	accent := color.New(color.FgYellow)
	for _, r := range reports {
		if r.Strategy == nil {
			continue
		}
		accent.Printf("%s: %s strategy (%d status, %d assignee events)\n",
			r.Result.IssueKey, r.Strategy.Strategy, r.Strategy.StatusEvents, r.Strategy.AssigneeEvents)
		for _, reason := range r.Strategy.Reasons {
			fmt.Printf("  - %s\n", reason)
		}
	}
}

func formatInstant(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func formatDays(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *seconds/86400)
}

func init() {
	issueCmd.Flags().StringVar(&issueWorker, "worker", "", "account ID to filter cycle times by")
	issueCmd.Flags().BoolVar(&issueExplain, "explain", false, "show which strategy the selector picked and why")
	issueCmd.Flags().BoolVar(&issueJSON, "json", false, "emit JSON instead of tables")
	rootCmd.AddCommand(issueCmd)
}
