package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/corvid89/taskhub/internal/domain/task"
	"github.com/corvid89/taskhub/internal/domain/user"
)

// ErrUnauthenticated marks any 401 from the server. Callers treat it as a
// signal to drop the session and re-login.
var ErrUnauthenticated = errors.New("unauthenticated")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is any non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Message string
	Errors  []FieldError
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
	}

	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return fmt.Sprintf("api error (%d): %s [%s]", e.Status, e.Message, strings.Join(parts, "; "))
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthenticated
	}
	return nil
}

// Client talks to the taskhub REST API. It injects the session's bearer
// token on every request and clears the session when the server answers 401.
type Client struct {
	baseURL string
	httpc   *http.Client
	session *Session
}

func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		session: session,
	}
}

type authResponse struct {
	Success bool      `json:"success"`
	Token   string    `json:"token"`
	User    user.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (user.User, error) {
	body := map[string]string{"name": name, "email": email, "password": password}

	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &resp); err != nil {
		return user.User{}, err
	}

	c.session.Establish(resp.Token, resp.User)

	return resp.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (user.User, error) {
	body := map[string]string{"email": email, "password": password}

	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return user.User{}, err
	}

	c.session.Establish(resp.Token, resp.User)

	return resp.User, nil
}

func (c *Client) Profile(ctx context.Context) (user.User, error) {
	var resp struct {
		User user.User `json:"user"`
	}

	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &resp); err != nil {
		return user.User{}, err
	}

	return resp.User, nil
}

func (c *Client) ListTasks(ctx context.Context, f Filters) ([]task.Task, error) {
	params := url.Values{}

	if f.Status != "" && f.Status != "all" {
		params.Set("status", f.Status)
	}
	if f.Priority != "" && f.Priority != "all" {
		params.Set("priority", f.Priority)
	}
	if f.SortBy != "" {
		params.Set("sortBy", f.SortBy)
	}
	if f.SortOrder != "" {
		params.Set("sortOrder", f.SortOrder)
	}

	path := "/api/tasks"
	if enc := params.Encode(); enc != "" {
		path += "?" + enc
	}

	var resp struct {
		Tasks []task.Task `json:"tasks"`
	}

	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	return resp.Tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, req task.CreateTaskRequest) (task.Task, error) {
	var resp struct {
		Task task.Task `json:"task"`
	}

	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &resp); err != nil {
		return task.Task{}, err
	}

	return resp.Task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, req task.UpdateTaskRequest) (task.Task, error) {
	var resp struct {
		Task task.Task `json:"task"`
	}

	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id, req, &resp); err != nil {
		return task.Task{}, err
	}

	return resp.Task, nil
}

// ToggleTask flips the completed flag and returns the updated task plus the
// server's human-readable status message.
func (c *Client) ToggleTask(ctx context.Context, id string) (task.Task, string, error) {
	var resp struct {
		Message string    `json:"message"`
		Task    task.Task `json:"task"`
	}

	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id+"/toggle", nil, &resp); err != nil {
		return task.Task{}, "", err
	}

	return resp.Task, resp.Message, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader

	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token, ok := c.session.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

		var envelope struct {
			Message string       `json:"message"`
			Errors  []FieldError `json:"errors"`
		}
		if json.Unmarshal(raw, &envelope) == nil && envelope.Message != "" {
			apiErr.Message = envelope.Message
			apiErr.Errors = envelope.Errors
		}

		// expired or revoked session: force a re-login
		if resp.StatusCode == http.StatusUnauthorized {
			c.session.Clear()
		}

		return apiErr
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(raw, out)
}
