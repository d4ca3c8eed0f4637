// Package chat relays user queries between a model and an MCP tool session.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bitop-dev/mcpchat/internal/logging"
	"github.com/bitop-dev/mcpchat/internal/provider"
	"github.com/bitop-dev/mcpchat/mcp"
)

const (
	DefaultModel        = "gpt-4o"
	DefaultTemperature  = 0.7
	DefaultSystemPrompt = "You are a helpful assistant who can use tools when needed."
)

// ErrNotConnected is returned when a query is run without a session.
var ErrNotConnected = errors.New("not connected to a tool server")

// Session is a live connection to a tool server. *mcp.Client implements it.
type Session interface {
	ListTools(ctx context.Context) ([]mcp.ToolInfo, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)
}

var _ Session = (*mcp.Client)(nil)

type Options struct {
	Model        string
	Temperature  *float64
	SystemPrompt string
	Logger       *slog.Logger
}

// Orchestrator runs one query at a time: a model call with the session's
// tools, the requested tool calls, and a follow-up model call when tools ran.
type Orchestrator struct {
	model        provider.Provider
	modelName    string
	temperature  float64
	systemPrompt string
	log          *slog.Logger
}

func New(model provider.Provider, opts Options) (*Orchestrator, error) {
	if model == nil {
		return nil, errors.New("chat: model provider is required")
	}
	o := &Orchestrator{
		model:        model,
		modelName:    opts.Model,
		temperature:  DefaultTemperature,
		systemPrompt: opts.SystemPrompt,
		log:          logging.Component(opts.Logger, "chat"),
	}
	if o.modelName == "" {
		o.modelName = DefaultModel
	}
	if opts.Temperature != nil {
		o.temperature = *opts.Temperature
	}
	if o.systemPrompt == "" {
		o.systemPrompt = DefaultSystemPrompt
	}
	return o, nil
}

// ToolCall records one executed tool invocation.
type ToolCall struct {
	ID       string
	Name     string
	Args     map[string]any
	Output   string
	IsError  bool
	Duration time.Duration
}

// Result is the outcome of one query. Err is nil on success, in which case
// Answer holds the text fragments the model produced joined by newlines.
type Result struct {
	Answer    string
	ToolCalls []ToolCall
	Err       error
}

func (r Result) OK() bool { return r.Err == nil }

// RunQuery answers text using the tools of session. Failures never panic and
// never end the session; they are reported in Result.Err.
func (o *Orchestrator) RunQuery(ctx context.Context, session Session, text string) Result {
	if session == nil {
		return Result{Err: &ConnectionError{Cause: ErrNotConnected}}
	}

	tools, err := session.ListTools(ctx)
	if err != nil {
		return Result{Err: &QueryError{Stage: StageDiscovery, Cause: err}}
	}
	o.log.Debug("tools listed", "count", len(tools))

	messages := []provider.Message{
		provider.Text(provider.RoleSystem, o.systemPrompt),
		provider.Text(provider.RoleUser, text),
	}

	resp, err := o.generate(ctx, messages, toolDefinitions(tools))
	if err != nil {
		return Result{Err: &QueryError{Stage: StageModel, Cause: err}}
	}

	var fragments []string
	if s := resp.Text(); s != "" {
		fragments = append(fragments, s)
	}

	calls := resp.ToolCalls()
	if len(calls) == 0 {
		return Result{Answer: strings.Join(fragments, "\n")}
	}

	executed := make([]ToolCall, 0, len(calls))
	for _, call := range calls {
		if call.ID == "" {
			call.ID = "call_" + uuid.NewString()
		}
		args, err := parseArguments(call.Args)
		if err != nil {
			return Result{ToolCalls: executed, Err: &QueryError{Stage: StageArguments, ToolName: call.Name, Cause: err}}
		}

		start := time.Now()
		res, err := session.CallTool(ctx, call.Name, args)
		elapsed := time.Since(start)
		if err == nil && res == nil {
			res = &mcp.CallToolResult{}
		}
		if err != nil {
			o.log.Debug("tool call", "tool", call.Name, "duration", elapsed, "ok", false, "err", err)
			return Result{ToolCalls: executed, Err: &QueryError{Stage: StageTool, ToolName: call.Name, Cause: err}}
		}
		output := res.Text()
		o.log.Debug("tool call", "tool", call.Name, "duration", elapsed, "ok", true, "is_error", res.IsError)
		executed = append(executed, ToolCall{
			ID:       call.ID,
			Name:     call.Name,
			Args:     args,
			Output:   output,
			IsError:  res.IsError,
			Duration: elapsed,
		})

		messages = append(messages,
			provider.Message{Role: provider.RoleAssistant, Content: []provider.ContentPart{call}},
			provider.ToolResult(call.ID, output),
		)
	}

	resp, err = o.generate(ctx, messages, nil)
	if err != nil {
		return Result{ToolCalls: executed, Err: &QueryError{Stage: StageFollowUp, Cause: err}}
	}
	if s := resp.Text(); s != "" {
		fragments = append(fragments, s)
	}
	return Result{Answer: strings.Join(fragments, "\n"), ToolCalls: executed}
}

func (o *Orchestrator) generate(ctx context.Context, messages []provider.Message, tools []provider.ToolDefinition) (provider.Response, error) {
	temp := o.temperature
	req := provider.Request{
		Model:       o.modelName,
		Messages:    messages,
		Tools:       tools,
		Temperature: &temp,
	}
	if len(tools) > 0 {
		req.ToolChoice = "auto"
	}
	start := time.Now()
	resp, err := o.model.Generate(ctx, req)
	o.log.Debug("model call", "messages", len(messages), "tools", len(tools), "duration", time.Since(start), "ok", err == nil)
	return resp, err
}

func toolDefinitions(tools []mcp.ToolInfo) []provider.ToolDefinition {
	if len(tools) == 0 {
		return nil
	}
	out := make([]provider.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		out = append(out, provider.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return out
}

// parseArguments decodes a model-produced arguments string. An empty string
// means no arguments; anything else must be a JSON object.
func parseArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("invalid tool arguments %q: %w", raw, err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
