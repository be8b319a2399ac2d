package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const pageSize = 100

type cloudClient struct {
	cfg        Config
	httpClient *http.Client

	// Request pacing
	lastRequest  time.Time
	requestMutex sync.Mutex

	// Session cache
	cache      map[string]*cacheEntry
	cacheMutex sync.Mutex
}

type cacheEntry struct {
	Value       any
	Expiration  time.Time
	AccessCount int
	OriginalTTL time.Duration
}

func newCloudClient(cfg Config) Client {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 90 * time.Second
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = 150 * time.Millisecond
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.RetryMax == 0 {
		cfg.RetryMax = 3
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &cloudClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		cache: make(map[string]*cacheEntry),
	}
}

func (c *cloudClient) getFromCache(key string) (any, bool) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		log.Debug().Str("key", key).Msg("Cache miss")
		return nil, false
	}
	log.Debug().Str("key", key).Msg("Cache hit")

	if time.Now().After(entry.Expiration) {
		delete(c.cache, key)
		return nil, false
	}

	// Sliding window extension
	if entry.AccessCount < 6 {
		entry.Expiration = time.Now().Add(entry.OriginalTTL)
		entry.AccessCount++
	}

	return entry.Value, true
}

func (c *cloudClient) addToCache(key string, value any) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	c.cache[key] = &cacheEntry{
		Value:       value,
		Expiration:  time.Now().Add(c.cfg.CacheTTL),
		OriginalTTL: c.cfg.CacheTTL,
		AccessCount: 1,
	}
	log.Debug().Str("key", key).Dur("ttl", c.cfg.CacheTTL).Msg("Added to cache")
}

// throttle spaces requests by RequestDelay. Metadata requests (boards,
// configuration, fields) are allowed to burst sequentially during setup.
func (c *cloudClient) throttle(isMetadata bool) {
	c.requestMutex.Lock()
	defer c.requestMutex.Unlock()

	if isMetadata {
		c.lastRequest = time.Now()
		return
	}

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling Jira request")
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

// doJSON performs one authenticated request and decodes the JSON response
// into out. 429 responses are retried up to RetryMax times, honouring the
// Retry-After header and falling back to exponential delays.
func (c *cloudClient) doJSON(ctx context.Context, method, requestURL string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryMax; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, requestURL, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryWait(resp.Header.Get("Retry-After"), attempt)
			resp.Body.Close()
			lastErr = fmt.Errorf("Jira rate limit exceeded (429)")
			log.Warn().Dur("wait", wait).Int("attempt", attempt+1).Msg("Rate limited by Jira, backing off")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			if out == nil {
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("failed to decode Jira response: %w", err)
			}
			return nil
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("Jira authentication failed (%d): check JIRA_EMAIL and JIRA_API_TOKEN", resp.StatusCode)
		case http.StatusNotFound:
			return fmt.Errorf("not found (404)")
		default:
			return fmt.Errorf("Jira API returned status %d", resp.StatusCode)
		}
	}

	return fmt.Errorf("%w after %d retries", lastErr, c.cfg.RetryMax)
}

// retryWait resolves the back-off delay for a 429: the Retry-After header
// when present, otherwise 500ms doubling per attempt.
func retryWait(retryAfter string, attempt int) time.Duration {
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 500 * time.Millisecond << attempt
}

func (c *cloudClient) SearchUsers(ctx context.Context, query string) ([]User, error) {
	cacheKey := "user_search:" + query
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]User), nil
	}

	c.throttle(false)

	params := url.Values{}
	params.Set("query", query)
	params.Set("maxResults", "50")

	var dtos []UserDTO
	requestURL := fmt.Sprintf("%s/rest/api/3/user/search?%s", c.cfg.BaseURL, params.Encode())
	if err := c.doJSON(ctx, http.MethodGet, requestURL, nil, &dtos); err != nil {
		return nil, fmt.Errorf("searching users %q: %w", query, err)
	}

	users := mapUsers(dtos)
	c.addToCache(cacheKey, users)
	return users, nil
}

func (c *cloudClient) Users(ctx context.Context) ([]User, error) {
	cacheKey := "users:all"
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]User), nil
	}

	var all []User
	for startAt := 0; ; startAt += pageSize {
		c.throttle(false)

		params := url.Values{}
		params.Set("startAt", strconv.Itoa(startAt))
		params.Set("maxResults", strconv.Itoa(pageSize))

		var page []UserDTO
		requestURL := fmt.Sprintf("%s/rest/api/3/users/search?%s", c.cfg.BaseURL, params.Encode())
		if err := c.doJSON(ctx, http.MethodGet, requestURL, nil, &page); err != nil {
			return nil, fmt.Errorf("listing users: %w", err)
		}

		all = append(all, mapUsers(page)...)
		if len(page) < pageSize {
			break
		}
	}

	c.addToCache(cacheKey, all)
	return all, nil
}

func (c *cloudClient) AssignableUsers(ctx context.Context, projectKeys []string, query string) ([]User, error) {
	cacheKey := "assignable:" + strings.Join(projectKeys, ",") + ":" + query
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]User), nil
	}

	var all []User
	for startAt := 0; ; startAt += pageSize {
		c.throttle(false)

		params := url.Values{}
		params.Set("projectKeys", strings.Join(projectKeys, ","))
		if query != "" {
			params.Set("query", query)
		}
		params.Set("startAt", strconv.Itoa(startAt))
		params.Set("maxResults", strconv.Itoa(pageSize))

		var page []UserDTO
		requestURL := fmt.Sprintf("%s/rest/api/3/user/assignable/multiProjectSearch?%s", c.cfg.BaseURL, params.Encode())
		if err := c.doJSON(ctx, http.MethodGet, requestURL, nil, &page); err != nil {
			return nil, fmt.Errorf("listing assignable users for %v: %w", projectKeys, err)
		}

		all = append(all, mapUsers(page)...)
		if len(page) < pageSize {
			break
		}
	}

	c.addToCache(cacheKey, all)
	return all, nil
}

func (c *cloudClient) BoardUsers(ctx context.Context, boardID int) ([]User, error) {
	projects, err := c.BoardProjects(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("board %d has no projects to resolve users from", boardID)
	}
	return c.AssignableUsers(ctx, projects, "")
}

func (c *cloudClient) Boards(ctx context.Context, nameFilter string) ([]Board, error) {
	cacheKey := "boards:" + nameFilter
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]Board), nil
	}

	var all []Board
	for startAt := 0; ; {
		c.throttle(true)

		params := url.Values{}
		if nameFilter != "" {
			params.Set("name", nameFilter)
		}
		params.Set("startAt", strconv.Itoa(startAt))
		params.Set("maxResults", "50")

		var page BoardsResponse
		requestURL := fmt.Sprintf("%s/rest/agile/1.0/board?%s", c.cfg.BaseURL, params.Encode())
		if err := c.doJSON(ctx, http.MethodGet, requestURL, nil, &page); err != nil {
			return nil, fmt.Errorf("listing boards: %w", err)
		}

		all = append(all, mapBoards(page.Values)...)
		startAt += len(page.Values)
		if page.IsLast || len(page.Values) == 0 {
			break
		}
	}

	c.addToCache(cacheKey, all)
	return all, nil
}

func (c *cloudClient) boardConfiguration(ctx context.Context, boardID int) (*BoardConfigurationDTO, error) {
	cacheKey := fmt.Sprintf("board_config:%d", boardID)
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.(*BoardConfigurationDTO), nil
	}

	c.throttle(true)

	var config BoardConfigurationDTO
	requestURL := fmt.Sprintf("%s/rest/agile/1.0/board/%d/configuration", c.cfg.BaseURL, boardID)
	if err := c.doJSON(ctx, http.MethodGet, requestURL, nil, &config); err != nil {
		return nil, fmt.Errorf("fetching configuration for board %d: %w", boardID, err)
	}

	c.addToCache(cacheKey, &config)
	return &config, nil
}

func (c *cloudClient) BoardProjects(ctx context.Context, boardID int) ([]string, error) {
	cacheKey := fmt.Sprintf("board_projects:%d", boardID)
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]string), nil
	}

	c.throttle(true)

	var resp BoardProjectsResponse
	requestURL := fmt.Sprintf("%s/rest/agile/1.0/board/%d/project", c.cfg.BaseURL, boardID)
	if err := c.doJSON(ctx, http.MethodGet, requestURL, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching projects for board %d: %w", boardID, err)
	}

	keys := make([]string, 0, len(resp.Values))
	for _, p := range resp.Values {
		keys = append(keys, p.Key)
	}

	c.addToCache(cacheKey, keys)
	return keys, nil
}

func (c *cloudClient) BoardFilterJQL(ctx context.Context, boardID int) (string, error) {
	config, err := c.boardConfiguration(ctx, boardID)
	if err != nil {
		return "", err
	}
	if config.Filter.ID == "" {
		return "", fmt.Errorf("board %d has no backing filter", boardID)
	}

	cacheKey := "filter:" + config.Filter.ID
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.(string), nil
	}

	c.throttle(true)

	var filter FilterDTO
	requestURL := fmt.Sprintf("%s/rest/api/3/filter/%s", c.cfg.BaseURL, config.Filter.ID)
	if err := c.doJSON(ctx, http.MethodGet, requestURL, nil, &filter); err != nil {
		return "", fmt.Errorf("fetching filter %s for board %d: %w", config.Filter.ID, boardID, err)
	}

	c.addToCache(cacheKey, filter.JQL)
	return filter.JQL, nil
}

func (c *cloudClient) Fields(ctx context.Context) ([]Field, error) {
	cacheKey := "fields:all"
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]Field), nil
	}

	c.throttle(true)

	var dtos []FieldDTO
	requestURL := fmt.Sprintf("%s/rest/api/3/field", c.cfg.BaseURL)
	if err := c.doJSON(ctx, http.MethodGet, requestURL, nil, &dtos); err != nil {
		return nil, fmt.Errorf("listing fields: %w", err)
	}

	fields := mapFields(dtos)
	c.addToCache(cacheKey, fields)
	return fields, nil
}

func (c *cloudClient) SearchIssues(ctx context.Context, jql string, fields []string) ([]Issue, error) {
	cacheKey := "search:" + jql + ":" + strings.Join(fields, ",")
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]Issue), nil
	}

	if len(fields) == 0 {
		fields = []string{"key", "summary", "issuetype", "status", "updated"}
	}

	log.Info().Msg("Requesting issues from Jira")
	log.Debug().Str("jql", jql).Msg("Jira search details")

	var all []Issue
	for startAt := 0; ; {
		c.throttle(false)

		body := map[string]any{
			"jql":        jql,
			"startAt":    startAt,
			"maxResults": pageSize,
			"fields":     fields,
		}

		var page SearchResponse
		requestURL := fmt.Sprintf("%s/rest/api/3/search/jql", c.cfg.BaseURL)
		if err := c.doJSON(ctx, http.MethodPost, requestURL, body, &page); err != nil {
			return nil, fmt.Errorf("searching issues: %w", err)
		}

		all = append(all, mapIssues(page.Issues)...)
		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}

	c.addToCache(cacheKey, all)
	return all, nil
}

func (c *cloudClient) Changelog(ctx context.Context, issueKey string) ([]ChangeHistory, error) {
	cacheKey := "changelog:" + issueKey
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]ChangeHistory), nil
	}

	var all []ChangeHistory
	for startAt := 0; ; {
		c.throttle(false)

		params := url.Values{}
		params.Set("startAt", strconv.Itoa(startAt))
		params.Set("maxResults", strconv.Itoa(pageSize))

		var page ChangelogResponse
		requestURL := fmt.Sprintf("%s/rest/api/3/issue/%s/changelog?%s", c.cfg.BaseURL, url.PathEscape(issueKey), params.Encode())
		if err := c.doJSON(ctx, http.MethodGet, requestURL, nil, &page); err != nil {
			return nil, fmt.Errorf("fetching changelog for %s: %w", issueKey, err)
		}

		all = append(all, page.Values...)
		startAt += len(page.Values)
		if len(page.Values) == 0 || startAt >= page.Total {
			break
		}
	}

	c.addToCache(cacheKey, all)
	return all, nil
}
