package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flowtime/internal/jira"
)

// demoHistories are canned change histories covering the three flows the
// strategy selector distinguishes: a clean linear issue, a hand-off between
// two workers, and a churny issue with an excluded status and an impediment.
func demoHistories() []struct {
	Key       string
	Worker    string
	Histories []jira.ChangeHistory
} {
	status := func(created, from, to string) jira.ChangeHistory {
		return jira.ChangeHistory{
			Created: created,
			Items:   []jira.ChangeItem{{Field: "status", FromString: from, ToString: to}},
		}
	}
	assignee := func(created, from, to string) jira.ChangeHistory {
		return jira.ChangeHistory{
			Created: created,
			Items:   []jira.ChangeItem{{Field: "assignee", From: from, To: to}},
		}
	}
	flagged := func(created, to string) jira.ChangeHistory {
		return jira.ChangeHistory{
			Created: created,
			Items:   []jira.ChangeItem{{Field: "Flagged", ToString: to}},
		}
	}

	return []struct {
		Key       string
		Worker    string
		Histories []jira.ChangeHistory
	}{
		{
			Key: "DEMO-1",
			Histories: []jira.ChangeHistory{
				status("2025-06-02T09:00:00.000+0000", "Backlog", "In Development"),
				status("2025-06-06T14:00:00.000+0000", "In Development", "Closed"),
			},
		},
		{
			Key:    "DEMO-2",
			Worker: "worker-b",
			Histories: []jira.ChangeHistory{
				assignee("2025-06-02T08:00:00.000+0000", "", "worker-a"),
				status("2025-06-02T08:30:00.000+0000", "Backlog", "In Development"),
				assignee("2025-06-04T10:00:00.000+0000", "worker-a", "worker-b"),
				status("2025-06-06T16:00:00.000+0000", "In Development", "Closed"),
			},
		},
		{
			Key: "DEMO-3",
			Histories: []jira.ChangeHistory{
				status("2025-06-02T09:00:00.000+0000", "Backlog", "Analysis"),
				status("2025-06-03T09:00:00.000+0000", "Analysis", "In Development"),
				flagged("2025-06-04T09:00:00.000+0000", "Impediment"),
				status("2025-06-05T09:00:00.000+0000", "In Development", "Acceptance"),
				flagged("2025-06-06T09:00:00.000+0000", "None"),
				status("2025-06-09T09:00:00.000+0000", "Acceptance", "In Development"),
				status("2025-06-10T09:00:00.000+0000", "In Development", "Closed"),
			},
		},
	}
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run canned histories through the engine (no network)",
	RunE: func(cmd *cobra.Command, args []string) error {
		title := color.New(color.FgCyan, color.Bold)

		var reports []issueReport
		for _, d := range demoHistories() {
			info := engine.Strategy(d.Histories, d.Worker)
			reports = append(reports, issueReport{
				Result:   engine.Calculate(d.Histories, d.Key, d.Worker),
				Strategy: &info,
			})
		}

		title.Println("Demo cycle times")
		issueExplain = true
		renderIssues(reports)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
