package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/streetlight-service/internal/api/dto"
	"github.com/spec-kit/streetlight-service/internal/domain"
)

// APIError is a failed call decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// Client calls the complaint service over HTTP.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
}

// New builds a client for baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

// WithToken returns a copy that sends the bearer token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// ListOptions narrows complaint listings.
type ListOptions struct {
	Status string
	Query  string
}

func (o ListOptions) encode() string {
	values := url.Values{}
	if o.Status != "" {
		values.Set("status", o.Status)
	}
	if o.Query != "" {
		values.Set("q", o.Query)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// Register creates an account and returns its session.
func (c *Client) Register(name, email, password string) (*dto.SessionResponse, error) {
	var out dto.SessionResponse
	err := c.do(fiber.MethodPost, "/auth/register", dto.RegisterRequest{Name: name, Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login signs in.
func (c *Client) Login(email, password string) (*dto.SessionResponse, error) {
	var out dto.SessionResponse
	if err := c.do(fiber.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the server-side session.
func (c *Client) Logout() error {
	return c.do(fiber.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the signed-in identity, or nil when the session is gone.
func (c *Client) Me() (*domain.PublicUser, error) {
	var out *domain.PublicUser
	if err := c.do(fiber.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateComplaint files a complaint.
func (c *Client) CreateComplaint(req dto.CreateComplaintRequest) (*dto.ComplaintResponse, error) {
	var out dto.ComplaintResponse
	if err := c.do(fiber.MethodPost, "/complaints", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMine lists the caller's complaints.
func (c *Client) ListMine(opts ListOptions) ([]dto.ComplaintResponse, error) {
	var out []dto.ComplaintResponse
	err := c.do(fiber.MethodGet, "/complaints"+opts.encode(), nil, &out)
	return out, err
}

// GetComplaint fetches one complaint.
func (c *Client) GetComplaint(id string) (*dto.ComplaintResponse, error) {
	var out dto.ComplaintResponse
	if err := c.do(fiber.MethodGet, "/complaints/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAll lists every complaint. Admin only.
func (c *Client) ListAll(opts ListOptions) ([]dto.ComplaintResponse, error) {
	var out []dto.ComplaintResponse
	err := c.do(fiber.MethodGet, "/admin/complaints"+opts.encode(), nil, &out)
	return out, err
}

// UpdateStatus changes a complaint's status. Admin only.
func (c *Client) UpdateStatus(id string, status domain.ComplaintStatus, notes *string) (*dto.ComplaintResponse, error) {
	var out dto.ComplaintResponse
	path := "/admin/complaints/" + url.PathEscape(id) + "/status"
	if err := c.do(fiber.MethodPatch, path, dto.UpdateStatusRequest{Status: status, Notes: notes}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns complaint counts per status. Admin only.
func (c *Client) Stats() (*dto.StatsResponse, error) {
	var out dto.StatsResponse
	if err := c.do(fiber.MethodGet, "/admin/complaints/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users lists accounts with complaint counts. Admin only.
func (c *Client) Users() ([]dto.UserSummaryResponse, error) {
	var out []dto.UserSummaryResponse
	err := c.do(fiber.MethodGet, "/admin/users", nil, &out)
	return out, err
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(method, path string, body, out any) error {
	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if c.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	if body != nil {
		agent.JSON(body)
	}
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	agent.Timeout(c.timeout)

	status, raw, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	if status >= 400 {
		apiErr := &APIError{Status: status, Code: "HTTP_ERROR", Message: strings.TrimSpace(string(raw))}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}
