package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitop-dev/mcpchat/internal/mcptest"
)

func newNWS(t *testing.T, routes map[string]func(w http.ResponseWriter, base string)) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/geo+json", r.Header.Get("Accept"))
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		h(w, srv.URL)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func body(s string) func(http.ResponseWriter, string) {
	return func(w http.ResponseWriter, _ string) { _, _ = w.Write([]byte(s)) }
}

func TestAlerts(t *testing.T) {
	srv := newNWS(t, map[string]func(http.ResponseWriter, string){
		"/alerts/active/area/CA": body(`{"features":[
			{"properties":{"event":"Heat Advisory","areaDesc":"Inland Empire","severity":"Moderate","description":"Hot.","instruction":"Drink water."}},
			{"properties":{"event":"Wind Advisory","instruction":null}}
		]}`),
		"/alerts/active/area/NY": body(`{"features":[]}`),
		"/alerts/active/area/TX": body(`{"title":"no features"}`),
	})
	c := NewClient(WithBaseURL(srv.URL))
	ctx := context.Background()

	got := c.Alerts(ctx, "CA")
	want := "\nEvent: Heat Advisory\nArea: Inland Empire\nSeverity: Moderate\nDescription: Hot.\nInstructions: Drink water.\n" +
		"\n---\n" +
		"\nEvent: Wind Advisory\nArea: Unknown\nSeverity: Unknown\nDescription: No description available\nInstructions: No specific instructions provided\n"
	assert.Equal(t, want, got)

	assert.Equal(t, msgNoActiveAlerts, c.Alerts(ctx, "NY"))
	assert.Equal(t, msgAlertsUnavailable, c.Alerts(ctx, "TX"))
	assert.Equal(t, msgAlertsUnavailable, c.Alerts(ctx, "ZZ"))
}

func forecastRoutes(periods int) map[string]func(http.ResponseWriter, string) {
	return map[string]func(http.ResponseWriter, string){
		"/points/40.7128,-74.006": func(w http.ResponseWriter, base string) {
			fmt.Fprintf(w, `{"properties":{"forecast":"%s/gridpoints/OKX/33,35/forecast"}}`, base)
		},
		"/gridpoints/OKX/33,35/forecast": func(w http.ResponseWriter, _ string) {
			var ps []string
			for i := 1; i <= periods; i++ {
				ps = append(ps, fmt.Sprintf(`{"name":"P%d","temperature":%d,"temperatureUnit":"F","windSpeed":"5 mph","windDirection":"NW","detailedForecast":"Sunny %d."}`, i, 60+i, i))
			}
			fmt.Fprintf(w, `{"properties":{"periods":[%s]}}`, strings.Join(ps, ","))
		},
	}
}

func TestForecast_FirstFivePeriods(t *testing.T) {
	srv := newNWS(t, forecastRoutes(7))
	c := NewClient(WithBaseURL(srv.URL))

	got := c.Forecast(context.Background(), 40.7128, -74.006)
	parts := strings.Split(got, "\n---\n")
	require.Len(t, parts, 5)
	assert.Equal(t, "\nP1:\nTemperature: 61°F\nWind: 5 mph NW\nForecast: Sunny 1.\n", parts[0])
	assert.Contains(t, parts[4], "P5:")
	assert.NotContains(t, got, "P6:")
}

func TestForecast_Fallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("points unavailable", func(t *testing.T) {
		srv := newNWS(t, nil)
		c := NewClient(WithBaseURL(srv.URL))
		assert.Equal(t, msgPointsUnavailable, c.Forecast(ctx, 1, 2))
	})

	t.Run("no forecast url", func(t *testing.T) {
		srv := newNWS(t, map[string]func(http.ResponseWriter, string){
			"/points/1.0,2.0": body(`{"properties":{}}`),
		})
		c := NewClient(WithBaseURL(srv.URL))
		assert.Equal(t, msgForecastUnavailable, c.Forecast(ctx, 1, 2))
	})

	t.Run("forecast fails", func(t *testing.T) {
		routes := forecastRoutes(3)
		routes["/gridpoints/OKX/33,35/forecast"] = func(w http.ResponseWriter, _ string) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		srv := newNWS(t, routes)
		c := NewClient(WithBaseURL(srv.URL))
		assert.Equal(t, msgForecastUnavailable, c.Forecast(ctx, 40.7128, -74.006))
	})

	t.Run("invalid json", func(t *testing.T) {
		srv := newNWS(t, map[string]func(http.ResponseWriter, string){
			"/points/1.0,2.0": body(`<html>`),
		})
		c := NewClient(WithBaseURL(srv.URL))
		assert.Equal(t, msgPointsUnavailable, c.Forecast(ctx, 1, 2))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := NewClient(WithBaseURL(srv.URL))
		assert.Equal(t, msgPointsUnavailable, c.Forecast(ctx, 1, 2))
		assert.Equal(t, msgAlertsUnavailable, c.Alerts(ctx, "CA"))
	})
}

func TestRegister(t *testing.T) {
	srv := newNWS(t, map[string]func(http.ResponseWriter, string){
		"/alerts/active/area/NY": body(`{"features":[]}`),
	})
	c := NewClient(WithBaseURL(srv.URL))
	cs := mcptest.Connect(t, func(s *mcp.Server) { Register(s, c) })

	assert.ElementsMatch(t, []string{"get_alerts", "get_forecast"}, mcptest.ToolNames(t, cs))
	assert.Equal(t, msgNoActiveAlerts, mcptest.CallText(t, cs, "get_alerts", map[string]any{"state": "NY"}))
}

func TestWithTimeout(t *testing.T) {
	shared := &http.Client{}
	c := NewClient(WithHTTPClient(shared), WithTimeout(time.Second))
	assert.Equal(t, time.Second, c.http.Timeout)
	assert.Zero(t, shared.Timeout, "caller's client must not be mutated")

	assert.Equal(t, DefaultTimeout, NewClient().http.Timeout)

	c = NewClient(WithHTTPClient(nil), WithTimeout(2*time.Second))
	require.NotNil(t, c.http)
	assert.Equal(t, 2*time.Second, c.http.Timeout)
}
