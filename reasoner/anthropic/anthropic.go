// Package anthropic backs the reasoner interface with the Anthropic Claude
// Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/reasoner"
)

// Options configures the Anthropic reasoner (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string

	// Instructions is the system prompt sent with every request.
	Instructions string

	// Tools advertises the callable tool surface to the model.
	Tools []core.ToolSpec
}

// Reasoner wraps the Anthropic Messages API behind the reasoner.Reasoner interface.
type Reasoner struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic reasoner using the official client
func New(optFns ...func(o *Options)) *Reasoner {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Reasoner{
		client: &client,
		opts:   opts,
	}
}

// NewFromClient creates a new Anthropic reasoner from an existing client
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Reasoner {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Reasoner{
		client: client,
		opts:   opts,
	}
}

// Step implements reasoner.Reasoner.
func (r *Reasoner) Step(ctx context.Context, turns []core.Turn) (*reasoner.Output, error) {
	params := anthropic.MessageNewParams{
		Model:       r.opts.Model,
		Messages:    buildMessages(turns),
		MaxTokens:   r.opts.MaxTokens,
		Temperature: anthropic.Float(r.opts.Temperature),
	}

	if r.opts.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: r.opts.Instructions}}
	}

	if len(r.opts.Tools) > 0 {
		params.Tools = buildTools(r.opts.Tools)
	}

	resp, err := r.client.Messages.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return nil, core.NewTimeoutError("anthropic request canceled", err)
		}
		return nil, core.NewExternalServiceError("anthropic api error", err)
	}

	out := &reasoner.Output{}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textBlock := block.AsText()
			if textBlock.Text != "" {
				out.FinalAnswer += textBlock.Text
			}
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := json.RawMessage("{}")
			if toolBlock.Input != nil {
				if argsBytes, err := json.Marshal(toolBlock.Input); err == nil {
					args = argsBytes
				}
			}
			out.Requests = append(out.Requests, core.ToolRequest{
				ID:        toolBlock.ID,
				ToolName:  toolBlock.Name,
				Arguments: args,
			})
		}
	}
	return out, nil
}

// buildMessages converts the turn history to the Anthropic message format.
// Assistant tool calls become tool_use blocks; their results follow as
// tool_result blocks inside a user message, which is the shape the Messages
// API requires for paired calls.
func buildMessages(turns []core.Turn) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	var pendingResults []anthropic.ContentBlockParamUnion

	flushResults := func() {
		if len(pendingResults) > 0 {
			messages = append(messages, anthropic.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for _, t := range turns {
		switch t.Role {
		case core.RoleUser:
			flushResults()
			if t.Content != "" {
				messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
			}
		case core.RoleAssistant:
			flushResults()
			var content []anthropic.ContentBlockParamUnion
			if t.Content != "" {
				content = append(content, anthropic.NewTextBlock(t.Content))
			}
			for _, req := range t.ToolRequests {
				var input interface{}
				if len(req.Arguments) > 0 {
					if err := json.Unmarshal(req.Arguments, &input); err != nil {
						input = string(req.Arguments)
					}
				}
				content = append(content, anthropic.NewToolUseBlock(req.ID, input, req.ToolName))
			}
			if len(content) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(content...))
			}
		case core.RoleTool:
			if t.Result == nil {
				continue
			}
			pendingResults = append(
				pendingResults,
				anthropic.NewToolResultBlock(t.ToolCallID, resultText(t.Result), !t.Result.OK()),
			)
		}
	}
	flushResults()

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

// buildTools converts tool specs to the Anthropic tool format
func buildTools(specs []core.ToolSpec) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(specs))

	for i, spec := range specs {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}

		if spec.InputSchema != nil {
			if properties, exists := spec.InputSchema["properties"]; exists {
				inputSchema.Properties = properties
			}
			if required, exists := spec.InputSchema["required"]; exists {
				if reqSlice, ok := required.([]string); ok {
					inputSchema.Required = reqSlice
				} else if reqInterface, ok := required.([]interface{}); ok {
					var reqStrings []string
					for _, req := range reqInterface {
						if s, ok := req.(string); ok {
							reqStrings = append(reqStrings, s)
						}
					}
					inputSchema.Required = reqStrings
				}
			}
		}

		anthropicTools[i] = anthropic.ToolUnionParamOfTool(inputSchema, spec.Name)
	}

	return anthropicTools
}

// Info returns metadata describing this Anthropic reasoner implementation.
func (r *Reasoner) Info() reasoner.Info {
	return reasoner.Info{Name: string(r.opts.Model), Provider: "anthropic"}
}
