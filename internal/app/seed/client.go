// Package seed talks to a running server's public API to load reference
// data. It goes through HTTP rather than the database so every record it
// creates passes the same validation and authorization as any other client.
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is where a locally running server answers.
const DefaultBaseURL = "http://localhost:4000/api/v1"

// Category is the payload createCategory accepts and showAllCategories returns.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultCategories is the catalog a fresh install starts with.
var DefaultCategories = []Category{
	{Name: "Web Development", Description: "HTML, CSS, JavaScript and modern frameworks"},
	{Name: "Data Science", Description: "Statistics, Python, Pandas and Machine Learning"},
	{Name: "Mobile Development", Description: "Android and iOS app development"},
	{Name: "Cloud & DevOps", Description: "AWS, Docker, CI/CD and deployment"},
	{Name: "AI & ML", Description: "Deep Learning and AI-driven applications"},
	{Name: "UI/UX Design", Description: "Design systems, Figma and prototyping"},
	{Name: "Cybersecurity", Description: "Network security and ethical hacking"},
}

// Client calls the API under BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Log:     logger,
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) call(ctx context.Context, method, path, token string, body any, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if resp.StatusCode/100 != 2 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}

// Login returns a bearer token for the given account.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var data struct {
		Token string `json:"token"`
	}
	err := c.call(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &data)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if data.Token == "" {
		return "", errors.New("login: no token received")
	}
	return data.Token, nil
}

// CreateCategory creates one category as the admin token's owner.
func (c *Client) CreateCategory(ctx context.Context, token string, cat Category) error {
	return c.call(ctx, http.MethodPost, "/course/createCategory", token, cat, nil)
}

// ListCategories returns every category on the server.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := c.call(ctx, http.MethodGet, "/course/showAllCategories", "", nil, &cats); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Outcome is what happened to one category.
type Outcome struct {
	Name    string
	Created bool
	Err     error // set when not created; a 400 usually means it already exists
}

// SeedCategories creates each category in turn. It never stops early: a
// failure on one category is recorded in its Outcome and the rest proceed.
func (c *Client) SeedCategories(ctx context.Context, token string, cats []Category) []Outcome {
	out := make([]Outcome, 0, len(cats))
	for _, cat := range cats {
		err := c.CreateCategory(ctx, token, cat)
		o := Outcome{Name: cat.Name, Created: err == nil, Err: err}
		if err != nil {
			c.Log.Info("category skipped", zap.String("name", cat.Name), zap.Error(err))
		} else {
			c.Log.Info("category created", zap.String("name", cat.Name))
		}
		out = append(out, o)
	}
	return out
}
