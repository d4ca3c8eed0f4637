// Package weather implements the National Weather Service tools served by the
// weather MCP server.
//
// Every lookup degrades to a fixed fallback sentence when the API cannot be
// reached or returns nothing usable; no error ever reaches the caller.
package weather

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/bitop-dev/mcpchat/internal/httpx"
	"github.com/bitop-dev/mcpchat/internal/logging"
	"github.com/bitop-dev/mcpchat/internal/numfmt"
)

const (
	DefaultBaseURL = "https://api.weather.gov"
	UserAgent      = "weather-app/1.0"
	DefaultTimeout = 30 * time.Second

	// forecastPeriods is how many upcoming periods a forecast lists.
	forecastPeriods = 5
)

const (
	msgAlertsUnavailable   = "Unable to fetch alerts or no alerts found."
	msgNoActiveAlerts      = "No active alerts for this state."
	msgPointsUnavailable   = "Unable to fetch forecast data for this location."
	msgForecastUnavailable = "Unable to fetch detailed forecast."
)

// Client queries the NWS API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

type Option func(*Client)

// WithBaseURL points the client at another API root (tests use an httptest server).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each NWS request. It replaces the HTTP client's timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		var hc http.Client
		if c.http != nil {
			hc = *c.http
		}
		hc.Timeout = d
		c.http = &hc
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c
}

// Alerts returns the active alerts for a two-letter US state code.
func (c *Client) Alerts(ctx context.Context, state string) string {
	data, ok := c.fetch(ctx, c.baseURL+"/alerts/active/area/"+url.PathEscape(state))
	if !ok {
		return msgAlertsUnavailable
	}
	features := data.Get("features")
	if !features.Exists() {
		return msgAlertsUnavailable
	}
	list := features.Array()
	if len(list) == 0 {
		return msgNoActiveAlerts
	}

	alerts := make([]string, 0, len(list))
	for _, f := range list {
		alerts = append(alerts, formatAlert(f.Get("properties")))
	}
	return strings.Join(alerts, "\n---\n")
}

// Forecast resolves the forecast resource for a coordinate and returns the next
// few forecast periods.
func (c *Client) Forecast(ctx context.Context, latitude, longitude float64) string {
	pointsURL := fmt.Sprintf("%s/points/%s,%s", c.baseURL, numfmt.Float(latitude), numfmt.Float(longitude))
	points, ok := c.fetch(ctx, pointsURL)
	if !ok {
		return msgPointsUnavailable
	}

	forecastURL := points.Get("properties.forecast").String()
	if forecastURL == "" {
		c.logger.Debug("points response has no forecast url", "url", pointsURL)
		return msgForecastUnavailable
	}
	forecast, ok := c.fetch(ctx, forecastURL)
	if !ok {
		return msgForecastUnavailable
	}

	periods := forecast.Get("properties.periods").Array()
	if len(periods) == 0 {
		return msgForecastUnavailable
	}
	if len(periods) > forecastPeriods {
		periods = periods[:forecastPeriods]
	}
	out := make([]string, 0, len(periods))
	for _, p := range periods {
		out = append(out, formatPeriod(p))
	}
	return strings.Join(out, "\n---\n")
}

// fetch GETs a geo+json document. ok is false on transport errors, non-2xx
// statuses and bodies that are not JSON.
func (c *Client) fetch(ctx context.Context, u string) (gjson.Result, bool) {
	h := make(http.Header)
	h.Set("User-Agent", UserAgent)
	h.Set("Accept", "application/geo+json")

	body, err := httpx.Get(ctx, c.http, u, h)
	if err != nil {
		c.logger.Debug("nws request failed", "url", u, "error", err)
		return gjson.Result{}, false
	}
	if !gjson.ValidBytes(body) {
		c.logger.Debug("nws response is not json", "url", u)
		return gjson.Result{}, false
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return gjson.Result{}, false
	}
	return res, true
}

func formatAlert(props gjson.Result) string {
	return fmt.Sprintf("\nEvent: %s\nArea: %s\nSeverity: %s\nDescription: %s\nInstructions: %s\n",
		field(props, "event", "Unknown"),
		field(props, "areaDesc", "Unknown"),
		field(props, "severity", "Unknown"),
		field(props, "description", "No description available"),
		field(props, "instruction", "No specific instructions provided"),
	)
}

func formatPeriod(p gjson.Result) string {
	return fmt.Sprintf("\n%s:\nTemperature: %s°%s\nWind: %s %s\nForecast: %s\n",
		p.Get("name").String(),
		p.Get("temperature").String(),
		p.Get("temperatureUnit").String(),
		p.Get("windSpeed").String(),
		p.Get("windDirection").String(),
		p.Get("detailedForecast").String(),
	)
}

func field(obj gjson.Result, key, fallback string) string {
	v := obj.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return fallback
	}
	return v.String()
}
