// Package client is a small JSON client for the dashboard API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"salary-board/internal/app"
	"salary-board/internal/common"
	"salary-board/internal/features"
	"salary-board/internal/ml"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx answer from the dashboard.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dashboard: %d %s", e.Status, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

type Client struct {
	base string
	rest *resty.Client
}

func New(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(10 * time.Second) // default fallback
	}
	r.SetHeader("Accept", "application/json")
	return &Client{base: strings.TrimRight(base, "/"), rest: r}
}

// Players returns the selectable player names, the abstract player first.
func (c *Client) Players(ctx context.Context) ([]string, error) {
	var players []string
	if err := c.get(ctx, common.RoutePlayers, nil, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// Schema returns the feature controls described in lang.
func (c *Client) Schema(ctx context.Context, lang string) ([]features.Control, error) {
	var controls []features.Control
	params := map[string]string{}
	if lang != "" {
		params["lang"] = lang
	}
	if err := c.get(ctx, common.RouteSchema, params, &controls); err != nil {
		return nil, err
	}
	return controls, nil
}

// Models returns the metadata of the loaded models.
func (c *Client) Models(ctx context.Context) ([]ml.ModelMetadata, error) {
	var models []ml.ModelMetadata
	if err := c.get(ctx, common.RouteModels, nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

// Render runs one render cycle for in.
func (c *Client) Render(ctx context.Context, in app.Input) (*app.Page, error) {
	page := &app.Page{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(page).
		SetError(&errorBody{}).
		Post(c.base + common.RouteRender)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if err := check(resp); err != nil {
		return nil, err
	}
	return page, nil
}

// Chart downloads the PNG of a server-rendered chart.
func (c *Client) Chart(ctx context.Context, name, player string) ([]byte, error) {
	req := c.rest.R().SetContext(ctx).SetError(&errorBody{})
	if player != "" {
		req.SetQueryParam("player", player)
	}
	resp, err := req.Get(fmt.Sprintf("%s/charts/%s.png", c.base, name))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if err := check(resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, result interface{}) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		SetError(&errorBody{}).
		Get(c.base + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return check(resp)
}

func check(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	msg := http.StatusText(resp.StatusCode())
	if body, ok := resp.Error().(*errorBody); ok && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}
