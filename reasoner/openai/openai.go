// Package openai backs the reasoner interface with the OpenAI Chat
// Completions API (function/tool calling, non-streaming). It converts the
// ordered turn history into the SDK's message format and parses tool calls
// back into structured requests.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/reasoner"
)

// Options configure the OpenAI reasoner.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64

	// Instructions is the system prompt prepended to every request.
	Instructions string

	// Tools advertises the callable tool surface to the model.
	Tools []core.ToolSpec
}

// Reasoner wraps the OpenAI Chat Completions API behind the reasoner.Reasoner interface.
type Reasoner struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI reasoner using the official client
func New(optFns ...func(o *Options)) *Reasoner {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI reasoner from an existing client
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Reasoner {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Reasoner{client: client, opts: opts}
}

// Step implements reasoner.Reasoner. It sends the full history plus the tool
// definitions in a single non-streaming completion and maps the reply into a
// final answer or a tool request batch.
func (r *Reasoner) Step(ctx context.Context, turns []core.Turn) (*reasoner.Output, error) {
	params := r.buildParams(buildMessages(r.opts.Instructions, turns))

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return nil, core.NewTimeoutError("openai request canceled", err)
		}
		return nil, core.NewExternalServiceError("openai api error", err)
	}
	if len(resp.Choices) == 0 {
		return nil, core.NewExternalServiceError("openai returned no choices", nil)
	}

	msg := resp.Choices[0].Message
	out := &reasoner.Output{FinalAnswer: msg.Content}
	for _, tc := range msg.ToolCalls {
		args := tc.Function.Arguments
		if args == "" {
			args = "{}"
		}
		out.Requests = append(out.Requests, core.ToolRequest{
			ID:        tc.ID,
			ToolName:  tc.Function.Name,
			Arguments: json.RawMessage(args),
		})
	}
	return out, nil
}

// buildMessages converts the turn history into OpenAI chat messages. Tool
// result turns become tool messages keyed by the originating call id, so the
// provider sees the same request/result pairing the history records.
func buildMessages(instructions string, turns []core.Turn) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if instructions != "" {
		messages = append(messages, openai.SystemMessage(instructions))
	}
	for _, t := range turns {
		switch t.Role {
		case core.RoleUser:
			messages = append(messages, openai.UserMessage(t.Content))
		case core.RoleAssistant:
			if len(t.ToolRequests) == 0 {
				messages = append(messages, openai.AssistantMessage(t.Content))
				continue
			}
			toolCalls := make([]openai.ChatCompletionMessageToolCallParam, len(t.ToolRequests))
			for i, req := range t.ToolRequests {
				toolCalls[i] = openai.ChatCompletionMessageToolCallParam{
					ID:   req.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      req.ToolName,
						Arguments: string(req.Arguments),
					},
				}
			}
			assistant := &openai.ChatCompletionAssistantMessageParam{
				Role:      "assistant",
				ToolCalls: toolCalls,
			}
			if t.Content != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(t.Content),
				}
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: assistant})
		case core.RoleTool:
			if t.Result == nil {
				continue
			}
			messages = append(messages, openai.ToolMessage(resultText(t.Result), t.ToolCallID))
		}
	}
	return messages
}

// resultText renders a tool result as the textual payload providers expect.
func resultText(res *core.ToolResult) string {
	if !res.OK() {
		return fmt.Sprintf("tool %s failed (%s): %s", res.ToolName, res.ErrorDetail, res.ErrorMessage)
	}
	if s, ok := res.Payload.(string); ok {
		return s
	}
	data, err := json.Marshal(res.Payload)
	if err != nil {
		return fmt.Sprintf("%v", res.Payload)
	}
	return string(data)
}

// buildParams assembles the OpenAI request parameters including tool definitions.
func (r *Reasoner) buildParams(messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               r.opts.Model,
		Temperature:         openai.Float(r.opts.Temperature),
		MaxCompletionTokens: openai.Int(r.opts.MaxCompletionTokens),
	}
	if len(r.opts.Tools) == 0 {
		return params
	}
	tools := make([]openai.ChatCompletionToolParam, len(r.opts.Tools))
	for i, spec := range r.opts.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        spec.Name,
				Description: openai.String(spec.Description),
				Parameters:  spec.InputSchema,
			},
		}
	}
	params.Tools = tools
	return params
}

// Info returns metadata describing this OpenAI reasoner implementation.
func (r *Reasoner) Info() reasoner.Info {
	return reasoner.Info{Name: r.opts.Model, Provider: "openai"}
}
