package jira

import (
	"context"
	"time"
)

// Issue represents the subset of Jira issue data the reports need.
type Issue struct {
	Key       string
	Summary   string
	IssueType string
	Status    string
}

// Board represents an agile board.
type Board struct {
	ID         int
	Name       string
	Type       string
	ProjectKey string
}

// User represents a Jira Cloud user identity.
type User struct {
	AccountID   string
	DisplayName string
	Email       string
	Active      bool
}

// Field represents a field definition, used to discover custom field IDs.
type Field struct {
	ID     string
	Name   string
	Type   string
	Custom bool
}

// Client is the interface for interacting with Jira Cloud.
type Client interface {
	SearchUsers(ctx context.Context, query string) ([]User, error)
	Users(ctx context.Context) ([]User, error)
	AssignableUsers(ctx context.Context, projectKeys []string, query string) ([]User, error)
	BoardUsers(ctx context.Context, boardID int) ([]User, error)
	Boards(ctx context.Context, nameFilter string) ([]Board, error)
	BoardProjects(ctx context.Context, boardID int) ([]string, error)
	BoardFilterJQL(ctx context.Context, boardID int) (string, error)
	Fields(ctx context.Context) ([]Field, error)
	SearchIssues(ctx context.Context, jql string, fields []string) ([]Issue, error)
	Changelog(ctx context.Context, issueKey string) ([]ChangeHistory, error)
}

// Config holds the authentication and connection settings for Jira Cloud.
type Config struct {
	BaseURL  string
	Email    string
	APIToken string

	// Performance settings
	RequestTimeout time.Duration
	RequestDelay   time.Duration
	CacheTTL       time.Duration
	RetryMax       int
}

// NewClient creates a new Jira client based on the provided configuration.
func NewClient(cfg Config) Client {
	return newCloudClient(cfg)
}
