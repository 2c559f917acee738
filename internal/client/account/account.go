// Package account talks to the backend's user endpoints.
package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/atinyakov/profilepanel/internal/models"
	"go.uber.org/zap"
)

const (
	apiUpdateUser = "/api/user/update/"
	apiGetUser    = "/api/user/"
)

// ResponseError is returned when the backend answers with a non-2xx status.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return e.Message
}

// Client calls the account endpoints of a single backend.
type Client struct {
	http    *http.Client
	baseURL string
	log     *zap.Logger
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(client *http.Client, baseURL string, log *zap.Logger) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{http: client, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// UpdateUser sends the draft as the update body for userID and returns the
// updated record.
func (c *Client) UpdateUser(ctx context.Context, userID string, draft models.Draft) (models.User, error) {
	b, err := json.Marshal(draft)
	if err != nil {
		return models.User{}, fmt.Errorf("encode draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+apiUpdateUser+url.PathEscape(userID), bytes.NewReader(b))
	if err != nil {
		return models.User{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("updating user", zap.String("user_id", userID), zap.Int("fields", len(draft)))
	return c.do(req)
}

// GetUser fetches the record of userID.
func (c *Client) GetUser(ctx context.Context, userID string) (models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiGetUser+url.PathEscape(userID), nil)
	if err != nil {
		return models.User{}, fmt.Errorf("build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (models.User, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return models.User{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			c.log.Debug("non-JSON error body", zap.Int("status", resp.StatusCode), zap.Error(err))
		}
		if body.Message == "" {
			body.Message = statusMessage(resp)
		}
		return models.User{}, &ResponseError{StatusCode: resp.StatusCode, Message: body.Message}
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return models.User{}, fmt.Errorf("invalid response: %w", err)
	}
	return user, nil
}

// statusMessage describes a non-2xx response that carried no usable message.
func statusMessage(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
