// Package platform provides the authenticated REST client for the
// monitoring portal.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/pulsemon/pulsemon-mcp/domain/alert"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics"
	"github.com/pulsemon/pulsemon-mcp/domain/metric"
	"github.com/pulsemon/pulsemon-mcp/infrastructure/logging"
)

// Client errors. All wrap analytics.ErrUpstream so tool handlers map
// them to an upstream failure code.
var (
	ErrAuthentication = fmt.Errorf("authentication failed: %w", analytics.ErrUpstream)
	ErrPermission     = fmt.Errorf("permission denied: %w", analytics.ErrUpstream)
	ErrNotFound       = fmt.Errorf("resource not found: %w", analytics.ErrUpstream)
	ErrRateLimited    = fmt.Errorf("rate limited: %w", analytics.ErrUpstream)
	ErrServer         = fmt.Errorf("portal server error: %w", analytics.ErrUpstream)
	ErrConnection     = fmt.Errorf("connection failed: %w", analytics.ErrUpstream)
	ErrRejected       = fmt.Errorf("request rejected: %w", analytics.ErrUpstream)
)

const apiVersion = "3"

// Config configures the portal client.
type Config struct {
	// BaseURL is the portal REST root, e.g.
	// https://acme.logicmonitor.com/santaba/rest.
	BaseURL string

	// BearerToken authenticates every request.
	BearerToken string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxRetries bounds retry attempts for rate-limited and server
	// errors.
	MaxRetries int

	// RetryDelay is the initial delay between retries.
	RetryDelay time.Duration

	// CircuitBreakerThreshold is consecutive failures before opening.
	CircuitBreakerThreshold int
}

// DefaultConfig returns sensible client defaults. BaseURL and
// BearerToken must still be set.
func DefaultConfig() Config {
	return Config{
		Timeout:                 30 * time.Second,
		MaxRetries:              3,
		RetryDelay:              time.Second,
		CircuitBreakerThreshold: 5,
	}
}

// Client is the authenticated portal REST client. It implements
// alert.Fetcher and metric.Fetcher.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	breaker circuitbreaker.CircuitBreaker[[]byte]
	retrier retry.Retry[[]byte]
}

// NewClient creates a portal client.
func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	threshold := config.CircuitBreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		token:   config.BearerToken,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		breaker: circuitbreaker.New[[]byte](circuitbreaker.Config{
			MaxRequests: 10,
			Interval:    30 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- threshold is validated
			},
		}),
		retrier: retry.New[[]byte](retry.Config{
			MaxAttempts:   config.MaxRetries,
			InitialDelay:  config.RetryDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    2.0,
			// Retry rate limits and server errors, never auth or
			// not-found responses.
			NonRetryableErrors: []error{ErrAuthentication, ErrPermission, ErrNotFound, ErrRejected},
		}),
	}
}

// get performs an authenticated GET and returns the response body.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	start := time.Now()
	attempt := 0
	body, err := c.breaker.Execute(ctx, func(ctx context.Context) ([]byte, error) {
		return c.retrier.Do(ctx, func(ctx context.Context) ([]byte, error) {
			attempt++
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Version", apiVersion)
			req.Header.Set("Authorization", "Bearer "+c.token)

			resp, err := c.client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrConnection, err)
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read response: %w", err)
			}
			if resp.StatusCode >= 400 {
				logging.Warn().
					Add(logging.Component("platform")).
					Add(logging.Endpoint(path)).
					Add(logging.StatusCode(resp.StatusCode)).
					Add(logging.Attempt(attempt)).
					Msg("portal request failed")
				return nil, statusError(resp.StatusCode, data)
			}
			return data, nil
		})
	})

	logging.Debug().
		Add(logging.Component("platform")).
		Add(logging.Endpoint(path)).
		Add(logging.Duration(time.Since(start))).
		Add(logging.ErrorField(err)).
		Msg("portal request")

	return body, err
}

// statusError maps an error response onto a client sentinel error.
func statusError(status int, body []byte) error {
	message := string(body)
	var parsed struct {
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.ErrorMessage != "" {
		message = parsed.ErrorMessage
	}

	switch {
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrAuthentication, message)
	case status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrPermission, message)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, message)
	case status >= 500:
		return fmt.Errorf("%w: status %d: %s", ErrServer, status, message)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrRejected, status, message)
	}
}

// alertItem is the portal wire representation of one alert.
type alertItem struct {
	ID           string `json:"id"`
	Severity     int    `json:"severity"`
	MonitorName  string `json:"monitorObjectName"`
	TemplateName string `json:"resourceTemplateName"`
	Datapoint    string `json:"dataPointName"`
	StartEpoch   int64  `json:"startEpoch"`
	EndEpoch     int64  `json:"endEpoch"`
	Cleared      bool   `json:"cleared"`
}

// FetchAlerts retrieves alerts matching the filter, newest window
// first. The limit is capped at the portal page size of 1000.
func (c *Client) FetchAlerts(ctx context.Context, filter alert.Filter, limit int) ([]alert.Alert, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}

	params := url.Values{}
	params.Set("size", strconv.Itoa(limit))
	params.Set("filter", buildAlertFilter(filter))

	body, err := c.get(ctx, "/alert/alerts", params)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Items []alertItem `json:"items"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode alert response: %w: %v", analytics.ErrUpstream, err)
	}

	alerts := make([]alert.Alert, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		alerts = append(alerts, alert.Alert{
			ID:         item.ID,
			Severity:   item.Severity,
			Device:     item.MonitorName,
			Datasource: item.TemplateName,
			Datapoint:  item.Datapoint,
			StartEpoch: item.StartEpoch,
			EndEpoch:   item.EndEpoch,
			Cleared:    item.Cleared,
		})
	}

	logging.Debug().
		Add(logging.Component("platform")).
		Add(logging.Device(filter.Device)).
		Add(logging.DeviceID(filter.DeviceID)).
		Add(logging.AlertCount(len(alerts))).
		Msg("alerts fetched")
	return alerts, nil
}

// buildAlertFilter renders the portal filter expression for a domain
// alert filter.
func buildAlertFilter(f alert.Filter) string {
	filters := []string{fmt.Sprintf("startEpoch>:%d", f.StartEpoch)}
	if f.OpenOnly {
		filters = append(filters, "cleared:false")
	}
	if f.ExactSeverity > 0 {
		filters = append(filters, fmt.Sprintf("severity:%d", f.ExactSeverity))
	} else if f.MinSeverity > 0 {
		filters = append(filters, fmt.Sprintf("severity>:%d", f.MinSeverity))
	}
	if f.Device != "" {
		filters = append(filters, "monitorObjectName~"+f.Device)
	}
	if f.DeviceID > 0 {
		filters = append(filters, fmt.Sprintf("monitorObjectId:%d", f.DeviceID))
	}
	if f.GroupID > 0 {
		filters = append(filters, fmt.Sprintf("hostGroupIds~%d", f.GroupID))
	}
	return strings.Join(filters, ",")
}

// instanceData is the portal wire representation of instance metric
// data. Older portals spell the datapoint key differently.
type instanceData struct {
	DataPoints    []string  `json:"dataPoints"`
	DataPointsAlt []string  `json:"datapoints"`
	Values        [][]any   `json:"values"`
	Time          []float64 `json:"time"`
}

// FetchInstanceData retrieves raw time-series data for one instance
// starting at startEpoch.
func (c *Client) FetchInstanceData(ctx context.Context, loc metric.Locator, datapoints string, startEpoch int64) (metric.Table, error) {
	path := fmt.Sprintf("/device/devices/%d/devicedatasources/%d/instances/%d/data",
		loc.DeviceID, loc.DeviceDatasourceID, loc.InstanceID)

	params := url.Values{}
	params.Set("start", strconv.FormatInt(startEpoch, 10))
	if datapoints != "" {
		params.Set("datapoints", datapoints)
	}

	body, err := c.get(ctx, path, params)
	if err != nil {
		return metric.Table{}, err
	}

	var parsed instanceData
	if err := json.Unmarshal(body, &parsed); err != nil {
		return metric.Table{}, fmt.Errorf("failed to decode instance data: %w: %v", analytics.ErrUpstream, err)
	}

	names := parsed.DataPoints
	if len(names) == 0 {
		names = parsed.DataPointsAlt
	}
	timestamps := make([]int64, len(parsed.Time))
	for i, t := range parsed.Time {
		timestamps[i] = int64(t)
	}

	logging.Debug().
		Add(logging.Component("platform")).
		Add(logging.DeviceID(loc.DeviceID)).
		Add(logging.Datapoints(datapoints)).
		Add(logging.SampleCount(len(parsed.Values))).
		Msg("instance data fetched")

	return metric.Table{
		Datapoints: names,
		Rows:       parsed.Values,
		Timestamps: timestamps,
	}, nil
}
