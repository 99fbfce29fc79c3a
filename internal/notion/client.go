// Package notion queries a Notion database for upcoming exams and
// assignments, implementing the tasks.Source contract.
package notion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/acuellar/estudiobot/internal/tasks"
)

const (
	defaultBaseURL   = "https://api.notion.com/v1"
	notionVersion    = "2022-06-28"
	queryTimeout     = 10 * time.Second
	maxRetryAttempts = 3
)

// Properties names the database columns the client reads.
type Properties struct {
	Date    string
	Title   string
	Subject string
	Content string
}

// APIError is a distinguishable failure of the task database, carrying the
// HTTP status and the response detail for the caller's message.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("task database error (status %d): %s", e.StatusCode, e.Detail)
}

// Client queries one Notion database.
type Client struct {
	httpClient *resty.Client
	databaseID string
	properties Properties
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Notion API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.httpClient.SetBaseURL(baseURL)
	}
}

// NewClient creates a Notion client. A database id pasted as a full
// notion.so URL is reduced to its id segment.
func NewClient(token, databaseID string, properties Properties, options ...Option) *Client {
	client := resty.New()
	client.SetBaseURL(defaultBaseURL)
	client.SetHeader("Authorization", "Bearer "+strings.TrimSpace(token))
	client.SetHeader("Notion-Version", notionVersion)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(queryTimeout)

	c := &Client{
		httpClient: client,
		databaseID: sanitizeDatabaseID(databaseID),
		properties: properties,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) Close() error {
	return c.httpClient.Close()
}

// sanitizeDatabaseID strips a pasted notion.so link down to the database id.
func sanitizeDatabaseID(databaseID string) string {
	databaseID = strings.TrimSpace(databaseID)
	if !strings.Contains(databaseID, "notion.so") {
		return databaseID
	}
	databaseID = strings.SplitN(databaseID, "?", 2)[0]
	segments := strings.Split(databaseID, "/")
	return strings.TrimSpace(segments[len(segments)-1])
}

// UpcomingTasks implements the tasks.Source interface. It returns tasks due
// today or later in ascending due-date order, optionally narrowed by a
// case-insensitive substring match on the subject.
func (c *Client) UpcomingTasks(ctx context.Context, subjectFilter string) ([]tasks.Task, error) {
	var result []tasks.Task
	if err := retry.Do(
		func() error {
			upcoming, err := c.queryUpcoming(ctx)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = upcoming
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return nil, err
	}

	if subjectFilter == "" {
		return result, nil
	}
	filtered := make([]tasks.Task, 0, len(result))
	for _, task := range result {
		if strings.Contains(strings.ToLower(task.Subject), strings.ToLower(subjectFilter)) {
			filtered = append(filtered, task)
		}
	}
	return filtered, nil
}

func (c *Client) queryUpcoming(ctx context.Context) ([]tasks.Task, error) {
	today := time.Now().Format("2006-01-02")
	requestBody := queryRequest{
		Filter: queryFilter{
			Property: c.properties.Date,
			Date:     dateCondition{OnOrAfter: today},
		},
		Sorts: []querySort{
			{Property: c.properties.Date, Direction: "ascending"},
		},
	}

	response, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&queryResponse{}).
		Post(fmt.Sprintf("/databases/%s/query", c.databaseID))
	if err != nil {
		return nil, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return nil, &APIError{StatusCode: response.StatusCode(), Detail: response.String()}
	}

	responseBody := response.Result().(*queryResponse)
	upcoming := make([]tasks.Task, 0, len(responseBody.Results))
	for _, p := range responseBody.Results {
		task, ok := p.toTask(c.properties)
		if !ok {
			slog.Debug("skipping page without a due date", "page_id", p.ID)
			continue
		}
		upcoming = append(upcoming, task)
	}
	return upcoming, nil
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError ||
			apiErr.StatusCode == http.StatusTooManyRequests
	}

	// Retry on network-related errors
	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout")
}
