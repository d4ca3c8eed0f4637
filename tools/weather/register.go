package weather

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bitop-dev/mcpchat/tools/mathtools"
)

// ServerName is the implementation name advertised by the weather server.
const ServerName = "weather"

type alertsArgs struct {
	State string `json:"state" jsonschema:"Two-letter US state code (e.g. CA, NY)"`
}

type forecastArgs struct {
	Latitude  float64 `json:"latitude" jsonschema:"Latitude of the location"`
	Longitude float64 `json:"longitude" jsonschema:"Longitude of the location"`
}

// Register adds get_alerts and get_forecast, backed by c, to s.
func Register(s *mcp.Server, c *Client) {
	mcp.AddTool(s, &mcp.Tool{Name: "get_alerts", Description: "Get weather alerts for a US state."},
		func(ctx context.Context, _ *mcp.CallToolRequest, in alertsArgs) (*mcp.CallToolResult, any, error) {
			return mathtools.TextResult(c.Alerts(ctx, in.State)), nil, nil
		})
	mcp.AddTool(s, &mcp.Tool{Name: "get_forecast", Description: "Get weather forecast for a location."},
		func(ctx context.Context, _ *mcp.CallToolRequest, in forecastArgs) (*mcp.CallToolResult, any, error) {
			return mathtools.TextResult(c.Forecast(ctx, in.Latitude, in.Longitude)), nil, nil
		})
}
