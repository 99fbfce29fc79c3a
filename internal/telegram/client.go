// Package telegram is a minimal Telegram Bot API client: message delivery
// plus long-polling for incoming commands.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	sendTimeout    = 10 * time.Second
	// pollTimeout is the long-poll window requested from Telegram; the HTTP
	// client timeout must exceed it.
	pollTimeout = 30
)

// Client talks to the Telegram Bot API for one bot token.
type Client struct {
	httpClient *resty.Client
	token      string
}

// NewClient creates a Telegram client.
func NewClient(token string) *Client {
	client := resty.New()
	client.SetBaseURL(defaultBaseURL)
	client.SetTimeout(time.Duration(pollTimeout+10) * time.Second)

	return &Client{
		httpClient: client,
		token:      token,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.httpClient.SetBaseURL(baseURL)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Update is one incoming event from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming chat message.
type Message struct {
	Chat Chat   `json:"chat"`
	From *User  `json:"from"`
	Text string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type User struct {
	FirstName string `json:"first_name"`
}

// Send delivers a Markdown message to one chat. It implements the
// notify.Notifier interface; userID is the chat id.
func (c *Client) Send(ctx context.Context, userID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := c.call(ctx, "sendMessage", map[string]any{
		"chat_id":    userID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("c.call(sendMessage) > %w", err)
	}
	return nil
}

// GetUpdates long-polls for incoming updates with ids above offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	result, err := c.call(ctx, "getUpdates", map[string]any{
		"offset":  strconv.FormatInt(offset, 10),
		"timeout": strconv.Itoa(pollTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("c.call(getUpdates) > %w", err)
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("json.Unmarshal > %w", err)
	}
	return updates, nil
}

func (c *Client) call(ctx context.Context, method string, body map[string]any) (json.RawMessage, error) {
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(fmt.Sprintf("/bot%s/%s", c.token, method))
	if err != nil {
		return nil, fmt.Errorf("client.R.Post > %w, response %s", err, string(res.Body()))
	}

	var response apiResponse
	if err := json.Unmarshal(res.Body(), &response); err != nil {
		return nil, fmt.Errorf("json.Unmarshal > %w, body %s", err, string(res.Body()))
	}
	if !response.OK {
		return nil, fmt.Errorf("status code: %d, description: %s", res.StatusCode(), response.Description)
	}
	return response.Result, nil
}
