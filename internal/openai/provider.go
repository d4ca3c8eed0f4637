// Package openai is a chat-completions client over plain HTTP.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/bitop-dev/mcpchat/internal/httpx"
	"github.com/bitop-dev/mcpchat/internal/provider"
)

type Provider struct {
	cfg Config
}

func New(cfg Config) (*Provider, error) {
	cfg = normalizeConfig(cfg)
	if cfg.APIKey == "" {
		return nil, &provider.Error{Provider: ProviderName, Code: "config_error", Message: "openai API key is required"}
	}
	return &Provider{cfg: cfg}, nil
}

func (p *Provider) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	payload, err := buildRequest(req)
	if err != nil {
		return provider.Response{}, &provider.Error{Provider: ProviderName, Code: "request_error", Message: err.Error(), Cause: err}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return provider.Response{}, &provider.Error{Provider: ProviderName, Code: "marshal_error", Message: err.Error(), Cause: err}
	}

	h := make(http.Header)
	h.Set("Authorization", "Bearer "+p.cfg.APIKey)
	for k, v := range p.cfg.Headers {
		h.Set(k, v)
	}

	resp, err := httpx.DoJSON(ctx, p.cfg.HTTPClient, http.MethodPost, p.cfg.BaseURL+"/chat/completions", body, h)
	if err != nil {
		return provider.Response{}, &provider.Error{Provider: ProviderName, Code: classifyNetworkErr(err), Message: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		var er errorResponse
		if json.Unmarshal(b, &er) == nil && er.Error.Message != "" {
			return provider.Response{}, &provider.Error{
				Provider: ProviderName,
				Code:     stringifyCode(er.Error.Code, er.Error.Type),
				Status:   resp.StatusCode,
				Message:  er.Error.Message,
			}
		}
		return provider.Response{}, &provider.Error{
			Provider: ProviderName,
			Code:     "http_error",
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(b)),
		}
	}

	var out chatCompletionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, httpx.MaxBodyBytes)).Decode(&out); err != nil {
		return provider.Response{}, &provider.Error{Provider: ProviderName, Code: "decode_error", Message: err.Error(), Cause: err}
	}
	if len(out.Choices) == 0 {
		return provider.Response{}, &provider.Error{Provider: ProviderName, Code: "invalid_response", Message: "response has no choices"}
	}
	c := out.Choices[0]

	msg, err := fromChatMessage(c.Message)
	if err != nil {
		return provider.Response{}, &provider.Error{Provider: ProviderName, Code: "invalid_response", Message: err.Error(), Cause: err}
	}

	return provider.Response{
		Message: msg,
		Usage: provider.Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
		FinishReason: provider.FinishReason(c.FinishReason),
	}, nil
}

func buildRequest(req provider.Request) (chatCompletionRequest, error) {
	if req.Model == "" {
		return chatCompletionRequest{}, fmt.Errorf("model is required")
	}
	msgs := make([]chatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		cm, err := toChatMessage(m)
		if err != nil {
			return chatCompletionRequest{}, err
		}
		msgs = append(msgs, cm)
	}

	out := chatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if len(req.Tools) > 0 {
		out.Tools = make([]tool, 0, len(req.Tools))
		for _, t := range req.Tools {
			if t.Name == "" {
				return chatCompletionRequest{}, fmt.Errorf("tool name is required")
			}
			out.Tools = append(out.Tools, tool{
				Type: "function",
				Function: toolFunction{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.InputSchema,
				},
			})
		}
		out.ToolChoice = req.ToolChoice
		if out.ToolChoice == "" {
			out.ToolChoice = "auto"
		}
	}
	return out, nil
}

func toChatMessage(m provider.Message) (chatMessage, error) {
	role := string(m.Role)
	if role == "" {
		return chatMessage{}, fmt.Errorf("message role is required")
	}
	content, toolCalls, err := splitContentParts(m.Content)
	if err != nil {
		return chatMessage{}, err
	}

	var contentPtr *string
	if content != "" || len(toolCalls) == 0 {
		contentPtr = &content
	}

	cm := chatMessage{
		Role:      role,
		Content:   contentPtr,
		ToolCalls: toolCalls,
	}

	if m.Role == provider.RoleTool {
		if m.ToolCallID == "" {
			return chatMessage{}, fmt.Errorf("tool message missing ToolCallID")
		}
		cm.ToolCallID = m.ToolCallID
	}
	return cm, nil
}

func splitContentParts(parts []provider.ContentPart) (string, []toolCall, error) {
	var b strings.Builder
	var toolCalls []toolCall

	for _, p := range parts {
		switch v := p.(type) {
		case provider.TextPart:
			b.WriteString(v.Text)
		case provider.ToolCallPart:
			toolCalls = append(toolCalls, toolCall{
				ID:   v.ID,
				Type: "function",
				Function: toolCallFn{
					Name:      v.Name,
					Arguments: v.Args,
				},
			})
		default:
			return "", nil, fmt.Errorf("unsupported content part %T", p)
		}
	}
	return b.String(), toolCalls, nil
}

func fromChatMessage(m chatMessage) (provider.Message, error) {
	role := provider.Role(m.Role)
	if role == "" {
		role = provider.RoleAssistant
	}
	var parts []provider.ContentPart
	if m.Content != nil && *m.Content != "" {
		parts = append(parts, provider.TextPart{Text: *m.Content})
	}
	for _, tc := range m.ToolCalls {
		if tc.Function.Name == "" {
			return provider.Message{}, fmt.Errorf("tool call missing name")
		}
		parts = append(parts, provider.ToolCallPart{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: tc.Function.Arguments,
		})
	}
	return provider.Message{Role: role, Content: parts}, nil
}

func stringifyCode(code any, fallback string) string {
	if v, ok := code.(string); ok && v != "" {
		return v
	}
	if fallback != "" {
		return fallback
	}
	return "unknown"
}

func classifyNetworkErr(err error) string {
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}
	return "network_error"
}

var _ provider.Provider = (*Provider)(nil)
