// Package openaisdk implements the chat-completion contract on the official
// openai-go client.
package openaisdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/bitop-dev/mcpchat/internal/provider"
)

const ProviderName = "openai-sdk"

type Config struct {
	APIKey     string
	BaseURL    string
	Headers    map[string]string
	HTTPClient *http.Client
}

// Provider adapts provider.Request into Chat Completions parameters and back.
type Provider struct {
	client openai.Client
}

// New builds a client with SDK retries disabled; failed requests surface to
// the caller after a single attempt.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, &provider.Error{Provider: ProviderName, Code: "config_error", Message: "openai API key is required"}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}
	return &Provider{client: openai.NewClient(opts...)}, nil
}

func (p *Provider) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	params, err := buildParams(req)
	if err != nil {
		return provider.Response{}, &provider.Error{Provider: ProviderName, Code: "request_error", Message: err.Error(), Cause: err}
	}
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return provider.Response{}, toProviderError(err)
	}
	if len(resp.Choices) == 0 {
		return provider.Response{}, &provider.Error{Provider: ProviderName, Code: "invalid_response", Message: "response has no choices"}
	}
	ch0 := resp.Choices[0]

	parts := make([]provider.ContentPart, 0, len(ch0.Message.ToolCalls)+1)
	if ch0.Message.Content != "" {
		parts = append(parts, provider.TextPart{Text: ch0.Message.Content})
	}
	for _, tc := range ch0.Message.ToolCalls {
		parts = append(parts, provider.ToolCallPart{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: tc.Function.Arguments,
		})
	}
	return provider.Response{
		Message: provider.Message{Role: provider.RoleAssistant, Content: parts},
		Usage: provider.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		FinishReason: provider.FinishReason(ch0.FinishReason),
	}, nil
}

func buildParams(req provider.Request) (openai.ChatCompletionNewParams, error) {
	if req.Model == "" {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("model is required")
	}
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		msg, err := toMessage(m)
		if err != nil {
			return openai.ChatCompletionNewParams{}, err
		}
		messages = append(messages, msg)
	}

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    req.Model,
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*req.MaxTokens))
	}
	if len(req.Tools) == 0 {
		return params, nil
	}

	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, t := range req.Tools {
		if t.Name == "" {
			return openai.ChatCompletionNewParams{}, fmt.Errorf("tool name is required")
		}
		fn := openai.FunctionDefinitionParam{Name: t.Name}
		if t.Description != "" {
			fn.Description = openai.String(t.Description)
		}
		if len(t.InputSchema) > 0 {
			var schema map[string]any
			if err := json.Unmarshal(t.InputSchema, &schema); err != nil {
				return openai.ChatCompletionNewParams{}, fmt.Errorf("tool %q schema: %w", t.Name, err)
			}
			fn.Parameters = schema
		}
		tools[i] = openai.ChatCompletionToolParam{Type: "function", Function: fn}
	}
	params.Tools = tools
	choice := req.ToolChoice
	if choice == "" {
		choice = "auto"
	}
	params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String(choice)}
	return params, nil
}

func toMessage(m provider.Message) (openai.ChatCompletionMessageParamUnion, error) {
	var text strings.Builder
	var calls []openai.ChatCompletionMessageToolCallParam
	for _, p := range m.Content {
		switch v := p.(type) {
		case provider.TextPart:
			text.WriteString(v.Text)
		case provider.ToolCallPart:
			calls = append(calls, openai.ChatCompletionMessageToolCallParam{
				ID:   v.ID,
				Type: "function",
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      v.Name,
					Arguments: v.Args,
				},
			})
		default:
			return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported content part %T", p)
		}
	}

	switch m.Role {
	case provider.RoleSystem:
		return openai.SystemMessage(text.String()), nil
	case provider.RoleUser:
		return openai.UserMessage(text.String()), nil
	case provider.RoleTool:
		if m.ToolCallID == "" {
			return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("tool message missing ToolCallID")
		}
		return openai.ToolMessage(text.String(), m.ToolCallID), nil
	case provider.RoleAssistant:
		if len(calls) == 0 {
			return openai.AssistantMessage(text.String()), nil
		}
		a := &openai.ChatCompletionAssistantMessageParam{Role: "assistant", ToolCalls: calls}
		if s := text.String(); s != "" {
			a.Content = openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(s)}
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: a}, nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported message role %q", m.Role)
	}
}

func toProviderError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		code := apiErr.Code
		if code == "" {
			code = apiErr.Type
		}
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return &provider.Error{Provider: ProviderName, Code: code, Status: apiErr.StatusCode, Message: msg, Cause: err}
	}
	code := "network_error"
	if errors.Is(err, context.Canceled) {
		code = "canceled"
	} else if errors.Is(err, context.DeadlineExceeded) {
		code = "timeout"
	}
	return &provider.Error{Provider: ProviderName, Code: code, Message: err.Error(), Cause: err}
}

var _ provider.Provider = (*Provider)(nil)
