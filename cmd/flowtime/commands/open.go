package commands

import (
	"fmt"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open KEY",
	Short: "Open an issue in the default browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Jira.BaseURL == "" {
			return fmt.Errorf("JIRA_URL is not configured")
		}
		url := strings.TrimRight(cfg.Jira.BaseURL, "/") + "/browse/" + args[0]
		return browser.OpenURL(url)
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
