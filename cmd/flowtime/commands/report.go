package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"flowtime/internal/cycletime"
	"flowtime/internal/jira"
	"flowtime/internal/stats"
)

var (
	reportBoard      int
	reportJQL        string
	reportYear       int
	reportQuarter    int
	reportFrom       string
	reportTo         string
	reportLastMonths int
	reportWorker     string
	reportSplitMonth bool
	reportJSON       bool
)

type windowReport struct {
	Label   string             `json:"label"`
	Start   time.Time          `json:"start"`
	End     time.Time          `json:"end"`
	Summary stats.Summary      `json:"summary"`
	Results []cycletime.Result `json:"results"`
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Cycle time report for a board or JQL query over a time window",
	Example: `  flowtime report --board 42 --year 2025 --quarter 3
  flowtime report --jql 'project = FLOW' --last-months 6 --split-month
  flowtime report --board 42 --from 2025-01-01 --to 2025-03-15 --worker 5b10ac8d`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		window, label, err := resolveWindow()
		if err != nil {
			return err
		}

		baseJQL, err := resolveBaseJQL(cmd)
		if err != nil {
			return err
		}

		if len(cfg.Vocabulary.Done) == 0 {
			return fmt.Errorf("no done status configured; set STATUS_DONE")
		}
		doneStatus := cfg.Vocabulary.Done[0]

		windows := []stats.MonthSlice{{Label: label, Window: window}}
		if reportSplitMonth {
			windows = stats.SplitByMonth(window)
		}

		var reports []windowReport
		for _, slice := range windows {
			query := jira.WrapFilter(baseJQL, jira.And(
				jira.StatusChangedClause(doneStatus, slice.Window.Start, slice.Window.End),
				workerClause(),
			))

			issues, err := jiraClient.SearchIssues(ctx, query, nil)
			if err != nil {
				return fmt.Errorf("searching issues for %s: %w", slice.Label, err)
			}

			keys := make([]string, len(issues))
			for i, issue := range issues {
				keys[i] = issue.Key
			}

			results, err := engine.CalculateMany(ctx, jiraClient, keys, reportWorker)
			if err != nil {
				return err
			}

			reports = append(reports, windowReport{
				Label:   slice.Label,
				Start:   slice.Window.Start,
				End:     slice.Window.End,
				Summary: stats.Summarize(results),
				Results: results,
			})
		}

		if reportJSON {
			return json.NewEncoder(os.Stdout).Encode(reports)
		}
		renderReports(reports)
		return nil
	},
}

// resolveWindow picks the report window from whichever flag group was used.
func resolveWindow() (stats.TimeWindow, string, error) {
	switch {
	case reportQuarter != 0:
		year := reportYear
		if year == 0 {
			year = time.Now().UTC().Year()
		}
		w, err := stats.QuarterWindow(year, reportQuarter, time.UTC)
		return w, fmt.Sprintf("Q%d %d", reportQuarter, year), err
	case reportFrom != "" || reportTo != "":
		if reportFrom == "" || reportTo == "" {
			return stats.TimeWindow{}, "", fmt.Errorf("--from and --to must be given together")
		}
		from, err := time.ParseInLocation("2006-01-02", reportFrom, time.UTC)
		if err != nil {
			return stats.TimeWindow{}, "", fmt.Errorf("parsing --from: %w", err)
		}
		to, err := time.ParseInLocation("2006-01-02", reportTo, time.UTC)
		if err != nil {
			return stats.TimeWindow{}, "", fmt.Errorf("parsing --to: %w", err)
		}
		w, err := stats.CustomWindow(from, to, time.UTC)
		return w, fmt.Sprintf("%s to %s", reportFrom, reportTo), err
	case reportLastMonths != 0:
		w, err := stats.RelativeWindow(reportLastMonths, time.UTC, time.Now().UTC())
		return w, fmt.Sprintf("last %d months", reportLastMonths), err
	default:
		return stats.TimeWindow{}, "", fmt.Errorf("select a window: --quarter, --from/--to, or --last-months")
	}
}

// resolveBaseJQL resolves the issue scope: an explicit query, or the board's
// saved filter with a project-scope fallback when the filter is unreadable.
func resolveBaseJQL(cmd *cobra.Command) (string, error) {
	if reportJQL != "" {
		return reportJQL, nil
	}
	if reportBoard == 0 {
		return "", fmt.Errorf("select a scope: --board or --jql")
	}

	filterJQL, err := jiraClient.BoardFilterJQL(cmd.Context(), reportBoard)
	if err == nil {
		return filterJQL, nil
	}
	log.Warn().Int("board", reportBoard).Err(err).Msg("Board filter unavailable, falling back to project scope")

	projects, projErr := jiraClient.BoardProjects(cmd.Context(), reportBoard)
	if projErr != nil || len(projects) == 0 {
		return "", fmt.Errorf("resolving scope for board %d: %w", reportBoard, err)
	}
	return jira.ProjectClause(projects), nil
}

func workerClause() string {
	if reportWorker == "" {
		return ""
	}
	return jira.AssigneeClause(reportWorker)
}

func renderReports(reports []windowReport) {
	header := color.New(color.FgCyan, color.Bold)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Window", "Count", "Avg (d)", "Median (d)", "P75 (d)", "P90 (d)", "Max (d)"})
	for _, r := range reports {
		s := r.Summary
		table.Append([]string{
			r.Label,
			fmt.Sprintf("%d", s.Count),
			fmt.Sprintf("%.1f", s.AvgDays),
			fmt.Sprintf("%.1f", s.MedianDays),
			fmt.Sprintf("%.1f", s.P75Days),
			fmt.Sprintf("%.1f", s.P90Days),
			fmt.Sprintf("%.1f", s.MaxDays),
		})
	}

	header.Println("Cycle time summary")
	table.Render()
}

func init() {
	reportCmd.Flags().IntVar(&reportBoard, "board", 0, "board ID whose saved filter scopes the report")
	reportCmd.Flags().StringVar(&reportJQL, "jql", "", "explicit JQL scope instead of a board")
	reportCmd.Flags().IntVar(&reportYear, "year", 0, "report year (defaults to the current year)")
	reportCmd.Flags().IntVar(&reportQuarter, "quarter", 0, "report quarter (1-4)")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "window start date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "window end date (YYYY-MM-DD)")
	reportCmd.Flags().IntVar(&reportLastMonths, "last-months", 0, "trailing window in months")
	reportCmd.Flags().StringVar(&reportWorker, "worker", "", "account ID to filter cycle times by")
	reportCmd.Flags().BoolVar(&reportSplitMonth, "split-month", false, "report each calendar month separately")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "emit JSON instead of tables")
	rootCmd.AddCommand(reportCmd)
}
