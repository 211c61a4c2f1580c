package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/excellence-college/school-portal/internal/models"
	"github.com/excellence-college/school-portal/pkg/config"
	appErrors "github.com/excellence-college/school-portal/pkg/errors"
)

// Client wraps the admissions backend REST API behind typed calls. Methods
// taking a token attach it as a bearer credential; an empty token sends the
// request unauthenticated. Responses outside 2xx are classified into the
// typed errors of pkg/errors.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	observer RoundTripObserver
}

// RoundTripObserver receives one callback per backend round trip. A zero
// status denotes a transport failure.
type RoundTripObserver interface {
	ObserveBackendRequest(op string, status int, duration time.Duration)
}

// Option mutates client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithObserver registers a round-trip observer for instrumentation.
func WithObserver(o RoundTripObserver) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient constructs a backend API client with the configured timeout.
func NewClient(cfg config.BackendConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the backend's uniform response shape.
type envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Data       json.RawMessage    `json:"data"`
	Pagination *models.Pagination `json:"pagination"`
	Errors     []fieldError       `json:"errors"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Login exchanges credentials for a bearer token and the admin user.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	var result models.LoginResult
	if err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login", "", body, &result, nil); err != nil {
		if appErrors.IsAuth(err) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, appErrors.FromError(err).Message)
		}
		return nil, err
	}
	return &result, nil
}

// CurrentUser resolves the user owning the given token.
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "auth.me", http.MethodGet, "/auth/me", token, nil, &user, nil); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword updates the authenticated admin's password.
func (c *Client) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	body := map[string]string{"currentPassword": currentPassword, "newPassword": newPassword}
	return c.do(ctx, "auth.password", http.MethodPut, "/auth/password", token, body, nil, nil)
}

// CreateInquiry submits a public inquiry.
func (c *Client) CreateInquiry(ctx context.Context, form models.InquiryForm) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := c.do(ctx, "inquiries.create", http.MethodPost, "/inquiries", "", form, &inquiry, nil); err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// ListInquiries fetches one page of inquiries matching the query.
func (c *Client) ListInquiries(ctx context.Context, token string, q models.ListQuery) ([]models.Inquiry, *models.Pagination, error) {
	params := url.Values{}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.Order != "" {
		params.Set("order", q.Order)
	}

	var inquiries []models.Inquiry
	var pagination *models.Pagination
	err := c.do(ctx, "inquiries.list", http.MethodGet, "/inquiries?"+params.Encode(), token, nil, &inquiries, &pagination)
	if err != nil {
		return nil, nil, err
	}
	return inquiries, pagination, nil
}

// GetInquiry fetches a single inquiry by ID.
func (c *Client) GetInquiry(ctx context.Context, token, id string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := c.do(ctx, "inquiries.get", http.MethodGet, "/inquiries/"+url.PathEscape(id), token, nil, &inquiry, nil); err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// UpdateInquiry applies an admin edit to status and/or notes.
func (c *Client) UpdateInquiry(ctx context.Context, token, id string, update models.InquiryUpdate) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := c.do(ctx, "inquiries.update", http.MethodPut, "/inquiries/"+url.PathEscape(id), token, update, &inquiry, nil); err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// DeleteInquiry removes an inquiry.
func (c *Client) DeleteInquiry(ctx context.Context, token, id string) error {
	return c.do(ctx, "inquiries.delete", http.MethodDelete, "/inquiries/"+url.PathEscape(id), token, nil, nil, nil)
}

// ExportCSV downloads the CSV export for the given status filter. The bytes
// are opaque to this layer and streamed to the browser unchanged.
func (c *Client) ExportCSV(ctx context.Context, token, status string) ([]byte, error) {
	path := "/inquiries/export/csv"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe("inquiries.export", 0, time.Since(start))
		return nil, c.transportError("inquiries.export", err)
	}
	defer resp.Body.Close()
	c.observe("inquiries.export", resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, c.statusError(resp.StatusCode, raw)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError("inquiries.export", err)
	}
	return blob, nil
}

// AdminStats fetches the aggregated admin analytics.
func (c *Client) AdminStats(ctx context.Context, token string) (*models.Stats, error) {
	var stats models.Stats
	if err := c.do(ctx, "stats.admin", http.MethodGet, "/stats", token, nil, &stats, nil); err != nil {
		return nil, err
	}
	return &stats, nil
}

// PublicStats fetches the unauthenticated stats subset.
func (c *Client) PublicStats(ctx context.Context) (*models.PublicStats, error) {
	var stats models.PublicStats
	if err := c.do(ctx, "stats.public", http.MethodGet, "/stats/public", "", nil, &stats, nil); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do performs one round trip, decodes the envelope into dest and pagination
// when requested, and classifies failures.
func (c *Client) do(ctx context.Context, op, method, path, token string, body, dest interface{}, pagination **models.Pagination) error {
	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, 0, time.Since(start))
		return c.transportError(op, err)
	}
	defer resp.Body.Close()
	c.observe(op, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return c.transportError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp.StatusCode, raw)
	}

	if dest == nil && pagination == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode backend response")
	}
	if dest != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode backend payload")
		}
	}
	if pagination != nil {
		*pagination = env.Pagination
	}
	return nil
}

func (c *Client) observe(op string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveBackendRequest(op, status, duration)
	}
}

func (c *Client) transportError(op string, err error) error {
	c.logger.Warn("backend request failed", zap.String("op", op), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, "backend unreachable or timed out")
}

// statusError maps a non-2xx response onto a typed error, preferring the
// backend-provided message and field details when present.
func (c *Client) statusError(status int, raw []byte) error {
	var env envelope
	_ = json.Unmarshal(raw, &env)

	message := strings.TrimSpace(env.Message)

	switch {
	case status == http.StatusUnauthorized:
		return appErrors.Clone(appErrors.ErrUnauthorized, message)
	case status == http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, message)
	case status == http.StatusBadRequest:
		err := appErrors.Clone(appErrors.ErrValidation, message)
		if len(env.Errors) > 0 {
			fields := make(map[string]string, len(env.Errors))
			for _, fe := range env.Errors {
				if fe.Field != "" {
					fields[fe.Field] = fe.Message
				}
			}
			err = appErrors.WithFields(err, fields)
		}
		return err
	default:
		if message == "" {
			message = fmt.Sprintf("backend returned status %d", status)
		}
		return appErrors.New(appErrors.ErrInternal.Code, status, message)
	}
}
