// Package client is a small Go client for the TeamTrack REST API, used by the
// CLI's client subcommands.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/teamtrack/teamtrack/internal/domain"
	"github.com/teamtrack/teamtrack/internal/service"
)

var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrTooManyRequests = errors.New("too many requests")
	ErrServer          = errors.New("server error")
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	rc *resty.Client

	mu    sync.RWMutex
	token string
}

type apiError struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:3000"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/api/v1").
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetError(&apiError{})

	return &Client{rc: rc}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.rc.R().SetContext(ctx)
	if token := c.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// Login authenticates and keeps the token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*service.AuthenticationResponse, error) {
	var out service.AuthenticationResponse
	resp, err := c.request(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/users/login")
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	if err := mapHTTPError(resp); err != nil {
		return nil, err
	}

	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) ListGames(ctx context.Context) ([]domain.Game, error) {
	var out []domain.Game
	if err := c.get(ctx, "/games", &out); err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return out, nil
}

func (c *Client) ListTeams(ctx context.Context) ([]domain.Team, error) {
	var out []domain.Team
	if err := c.get(ctx, "/teams", &out); err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	return out, nil
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.get(ctx, "/users/me", &out); err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	resp, err := c.request(ctx).SetResult(out).Get(path)
	if err != nil {
		return err
	}
	return mapHTTPError(resp)
}

// mapHTTPError turns a non-2xx response into one of the package sentinels,
// carrying the server's errorMessage.
func mapHTTPError(resp *resty.Response) error {
	if !resp.IsError() && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	msg := http.StatusText(resp.StatusCode())
	if e, ok := resp.Error().(*apiError); ok && e.ErrorMessage != "" {
		msg = e.ErrorMessage
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, msg)
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, msg)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case code == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrTooManyRequests, msg)
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrServer, msg)
	default:
		return fmt.Errorf("http %d: %s", code, msg)
	}
}
