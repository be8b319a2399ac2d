package jira

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Jira's JQL date literals use this layout.
const jqlTimeLayout = "2006/01/02 15:04"

var orderByPattern = regexp.MustCompile(`(?i)\border\s+by\b`)

// TimeRangeClause builds a `field during (...)` clause over an inclusive window.
func TimeRangeClause(field string, start, end time.Time) string {
	return fmt.Sprintf("%s during (%q, %q)", field, start.Format(jqlTimeLayout), end.Format(jqlTimeLayout))
}

// StatusChangedClause matches issues whose status changed to the given value
// inside the window. More reliable than resolutiondate for boards that close
// issues without resolving them.
func StatusChangedClause(status string, start, end time.Time) string {
	return fmt.Sprintf("status changed to %q during (%q, %q)", status, start.Format(jqlTimeLayout), end.Format(jqlTimeLayout))
}

// AssigneeClause restricts a query to a single account ID.
func AssigneeClause(accountID string) string {
	return fmt.Sprintf("assignee = %q", accountID)
}

// ProjectClause restricts a query to a set of project keys.
func ProjectClause(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	return fmt.Sprintf("project in (%s)", strings.Join(quoted, ", "))
}

// And joins non-empty clauses, parenthesising each.
func And(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, "("+p+")")
		}
	}
	return strings.Join(nonEmpty, " AND ")
}

// StripOrderBy removes a trailing ORDER BY clause (case-insensitive).
// Saved filter JQL routinely ends in one, which is illegal inside parentheses.
func StripOrderBy(jql string) string {
	if jql == "" {
		return jql
	}
	loc := orderByPattern.FindStringIndex(jql)
	if loc == nil {
		return strings.TrimSpace(jql)
	}
	return strings.TrimSpace(jql[:loc[0]])
}

// WrapFilter combines a saved filter's JQL with extra clauses.
func WrapFilter(filterJQL, extra string) string {
	if filterJQL == "" {
		return extra
	}
	return And(StripOrderBy(filterJQL), extra)
}
