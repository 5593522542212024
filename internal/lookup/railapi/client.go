// Package railapi provides a client for the RailwayVision lookup and
// routing backend.
package railapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/themuku/RailwayVision/internal/lookup"
	"github.com/themuku/RailwayVision/internal/provider/resilience"
)

const (
	// ProviderName identifies this backend for circuit breaking and health.
	ProviderName = "railapi"

	// DefaultBaseURL is the production backend base URL.
	DefaultBaseURL = "https://nurlan.bsite.net/api"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client talks to the RailwayVision backend.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new backend client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// All fetches the full population center dump.
func (c *Client) All(ctx context.Context) ([]lookup.PopulationCenter, error) {
	body, err := c.get(ctx, "centers", c.baseURL+"/populationcenters")
	if err != nil {
		return nil, err
	}

	var centers []lookup.PopulationCenter
	if err := json.Unmarshal(body, &centers); err != nil {
		return nil, fmt.Errorf("decoding population centers: %w", lookup.ErrBadResponse)
	}

	c.logger.Debug().
		Int("center_count", len(centers)).
		Msg("fetched population centers")

	return centers, nil
}

// ByID fetches a single population center.
func (c *Client) ByID(ctx context.Context, id lookup.CenterID) (*lookup.PopulationCenter, error) {
	endpoint := c.baseURL + "/populationcenters/" + url.PathEscape(id.String())
	body, err := c.get(ctx, "center", endpoint)
	if err != nil {
		return nil, err
	}

	var center lookup.PopulationCenter
	if err := json.Unmarshal(body, &center); err != nil {
		return nil, fmt.Errorf("decoding population center: %w", lookup.ErrBadResponse)
	}
	return &center, nil
}

// Route computes a route between two centers. Identifiers are passed
// through verbatim.
func (c *Client) Route(ctx context.Context, fromID, toID lookup.CenterID) (*lookup.Route, error) {
	q := url.Values{}
	q.Set("FromId", fromID.String())
	q.Set("ToId", toID.String())

	c.logger.Debug().
		Str("from_id", fromID.String()).
		Str("to_id", toID.String()).
		Msg("requesting route from backend")

	body, err := c.get(ctx, "route", c.baseURL+"/routes?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var route lookup.Route
	if err := json.Unmarshal(body, &route); err != nil {
		return nil, fmt.Errorf("decoding route: %w", lookup.ErrBadResponse)
	}

	c.logger.Debug().
		Int("geometry_points", len(route.Geometry)).
		Int("stations", len(route.Stations)).
		Float64("distance_km", route.DistanceKm).
		Msg("received route from backend")

	return &route, nil
}

// get executes a GET request and returns the response body, mapping
// transport and HTTP errors to domain errors.
func (c *Client) get(ctx context.Context, op, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &lookup.Error{
			Op:      op,
			Message: "failed to reach lookup backend",
			Err:     lookup.ErrUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFor(op, resp.StatusCode)
	}

	return body, nil
}

// errorFor maps a non-200 status to a domain error.
func (c *Client) errorFor(op string, status int) error {
	switch {
	case status == http.StatusNotFound && op == "route":
		return &lookup.Error{
			Op:      op,
			Status:  status,
			Message: "no route between the given centers",
			Err:     lookup.ErrNoRoute,
		}
	case status == http.StatusNotFound:
		return &lookup.Error{
			Op:      op,
			Status:  status,
			Message: "population center not found",
			Err:     lookup.ErrCenterNotFound,
		}
	case status >= 500:
		return &lookup.Error{
			Op:      op,
			Status:  status,
			Message: "lookup backend is temporarily unavailable",
			Err:     lookup.ErrUnavailable,
		}
	default:
		return &lookup.Error{
			Op:      op,
			Status:  status,
			Message: fmt.Sprintf("lookup backend returned status %d", status),
			Err:     lookup.ErrUnavailable,
		}
	}
}
