package mathtools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerName is the implementation name advertised by the math server.
const ServerName = "math-solver"

type binaryArgs struct {
	A float64 `json:"a" jsonschema:"First number"`
	B float64 `json:"b" jsonschema:"Second number"`
}

type divideArgs struct {
	A float64 `json:"a" jsonschema:"First number (dividend)"`
	B float64 `json:"b" jsonschema:"Second number (divisor)"`
}

type subtractArgs struct {
	A float64 `json:"a" jsonschema:"First number (minuend)"`
	B float64 `json:"b" jsonschema:"Second number (subtrahend)"`
}

type expressionArgs struct {
	Expression string `json:"expression" jsonschema:"Mathematical expression as a string (e.g. 5 + 3 or 10 * 2 - 5)"`
}

type percentageArgs struct {
	Number  float64 `json:"number" jsonschema:"The base number"`
	Percent float64 `json:"percent" jsonschema:"The percentage to calculate (e.g. 25 for 25%)"`
}

type powerArgs struct {
	Base     float64 `json:"base" jsonschema:"The base number"`
	Exponent float64 `json:"exponent" jsonschema:"The exponent/power"`
}

type numberArgs struct {
	Number float64 `json:"number" jsonschema:"The number to find square root of"`
}

// Register adds every math tool to s.
func Register(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{Name: "add", Description: "Add two numbers together."},
		func(_ context.Context, _ *mcp.CallToolRequest, in binaryArgs) (*mcp.CallToolResult, any, error) {
			return TextResult(Add(in.A, in.B)), nil, nil
		})
	mcp.AddTool(s, &mcp.Tool{Name: "subtract", Description: "Subtract second number from first number."},
		func(_ context.Context, _ *mcp.CallToolRequest, in subtractArgs) (*mcp.CallToolResult, any, error) {
			return TextResult(Subtract(in.A, in.B)), nil, nil
		})
	mcp.AddTool(s, &mcp.Tool{Name: "multiply", Description: "Multiply two numbers together."},
		func(_ context.Context, _ *mcp.CallToolRequest, in binaryArgs) (*mcp.CallToolResult, any, error) {
			return TextResult(Multiply(in.A, in.B)), nil, nil
		})
	mcp.AddTool(s, &mcp.Tool{Name: "divide", Description: "Divide first number by second number."},
		func(_ context.Context, _ *mcp.CallToolRequest, in divideArgs) (*mcp.CallToolResult, any, error) {
			return TextResult(Divide(in.A, in.B)), nil, nil
		})
	mcp.AddTool(s, &mcp.Tool{Name: "calculate", Description: "Calculate a simple mathematical expression with +, -, *, / operations."},
		func(_ context.Context, _ *mcp.CallToolRequest, in expressionArgs) (*mcp.CallToolResult, any, error) {
			return TextResult(Calculate(in.Expression)), nil, nil
		})
	mcp.AddTool(s, &mcp.Tool{Name: "percentage", Description: "Calculate percentage of a number."},
		func(_ context.Context, _ *mcp.CallToolRequest, in percentageArgs) (*mcp.CallToolResult, any, error) {
			return TextResult(Percentage(in.Number, in.Percent)), nil, nil
		})
	mcp.AddTool(s, &mcp.Tool{Name: "power", Description: "Calculate base raised to the power of exponent."},
		func(_ context.Context, _ *mcp.CallToolRequest, in powerArgs) (*mcp.CallToolResult, any, error) {
			return TextResult(Power(in.Base, in.Exponent)), nil, nil
		})
	mcp.AddTool(s, &mcp.Tool{Name: "square_root", Description: "Calculate the square root of a number."},
		func(_ context.Context, _ *mcp.CallToolRequest, in numberArgs) (*mcp.CallToolResult, any, error) {
			return TextResult(SquareRoot(in.Number)), nil, nil
		})
	mcp.AddTool(s, &mcp.Tool{Name: "solve_steps", Description: "Show step-by-step solution for simple arithmetic expressions."},
		func(_ context.Context, _ *mcp.CallToolRequest, in expressionArgs) (*mcp.CallToolResult, any, error) {
			return TextResult(SolveSteps(in.Expression)), nil, nil
		})
}

// TextResult wraps s as a single text content result.
func TextResult(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: s}}}
}
