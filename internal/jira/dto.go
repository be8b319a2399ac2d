package jira

import "time"

// SearchResponse is the top-level container for Jira issue search results.
type SearchResponse struct {
	StartAt    int        `json:"startAt"`
	MaxResults int        `json:"maxResults"`
	Total      int        `json:"total"`
	Issues     []IssueDTO `json:"issues"`
}

// IssueDTO represents a single issue in the Jira search response.
type IssueDTO struct {
	Key    string    `json:"key"`
	Fields FieldsDTO `json:"fields"`
}

// FieldsDTO contains the specific fields we care about.
type FieldsDTO struct {
	Summary   string `json:"summary"`
	IssueType struct {
		Name    string `json:"name"`
		Subtask bool   `json:"subtask"`
	} `json:"issuetype"`
	Status struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"status"`
	Updated string `json:"updated"`
}

// ChangelogResponse is one page of an issue's change history.
type ChangelogResponse struct {
	StartAt    int             `json:"startAt"`
	MaxResults int             `json:"maxResults"`
	Total      int             `json:"total"`
	Values     []ChangeHistory `json:"values"`
}

// ChangeHistory is a single entry in the changelog: one actor, one instant,
// one or more field changes.
type ChangeHistory struct {
	ID      string       `json:"id"`
	Author  AuthorDTO    `json:"author"`
	Created string       `json:"created"`
	Items   []ChangeItem `json:"items"`
}

// AuthorDTO identifies the actor of a changelog entry.
type AuthorDTO struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
}

// ChangeItem is a single field change within a history entry. From/To carry
// IDs (actor account IDs for assignee changes), FromString/ToString carry the
// human-readable values (status and flag names).
type ChangeItem struct {
	Field      string `json:"field"`
	From       string `json:"from"`
	FromString string `json:"fromString"`
	To         string `json:"to"`
	ToString   string `json:"toString"`
}

// BoardsResponse is one page of the agile board listing.
type BoardsResponse struct {
	StartAt    int        `json:"startAt"`
	MaxResults int        `json:"maxResults"`
	Total      int        `json:"total"`
	IsLast     bool       `json:"isLast"`
	Values     []BoardDTO `json:"values"`
}

// BoardDTO represents a single agile board.
type BoardDTO struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Location struct {
		ProjectKey  string `json:"projectKey"`
		ProjectName string `json:"projectName"`
	} `json:"location"`
}

// BoardConfigurationDTO carries the subset of the board configuration needed
// to resolve the backing saved filter.
type BoardConfigurationDTO struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Filter struct {
		ID string `json:"id"`
	} `json:"filter"`
}

// BoardProjectsResponse is one page of the projects behind a board.
type BoardProjectsResponse struct {
	Total  int `json:"total"`
	Values []struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"values"`
}

// FilterDTO represents a saved filter with its JQL.
type FilterDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	JQL  string `json:"jql"`
}

// UserDTO represents a Jira Cloud user.
type UserDTO struct {
	AccountID   string `json:"accountId"`
	AccountType string `json:"accountType"`
	DisplayName string `json:"displayName"`
	Email       string `json:"emailAddress"`
	Active      bool   `json:"active"`
}

// FieldDTO represents a field definition (system or custom).
type FieldDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Custom bool   `json:"custom"`
	Schema struct {
		Type   string `json:"type"`
		Custom string `json:"custom"`
	} `json:"schema"`
}

// ParseTime is a helper for the strict Jira time format.
func ParseTime(s string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05.000-0700", s)
}
