package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/clemhq/clem/internal/schema"
)

// DefaultTimeout bounds a single reasoner call when no timeout is
// configured. A call that exceeds it fails exactly like a provider error.
const DefaultTimeout = 60 * time.Second

// OpenAIOptions configures the production reasoner client.
type OpenAIOptions struct {
	// APIKey authenticates against the provider.
	APIKey string

	// Model is the chat completion model identifier.
	Model string

	// BaseURL overrides the provider endpoint. Empty means the OpenAI
	// default; set it to use any OpenAI-compatible service.
	BaseURL string

	// Timeout bounds each Invoke call. Zero means DefaultTimeout.
	Timeout time.Duration

	// Temperature for completions. Structured assessment favors 0.
	Temperature float32
}

// OpenAI is a reasoner client backed by an OpenAI-compatible chat
// completion endpoint. It requests schema-constrained JSON output via the
// response_format mechanism and parses the single returned choice.
//
// Safe for concurrent use.
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	temp    float32
}

var _ Client = (*OpenAI)(nil)

// NewOpenAI creates a production reasoner client.
func NewOpenAI(opts OpenAIOptions) *OpenAI {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenAI{
		client:  openai.NewClientWithConfig(cfg),
		model:   opts.Model,
		timeout: timeout,
		temp:    opts.Temperature,
	}
}

// Invoke sends the prompt with a JSON-Schema response format rendered from
// the contract and returns the decoded object.
func (o *OpenAI) Invoke(ctx context.Context, prompt string, contract schema.Contract) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	def := schema.JSONSchema(contract)
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.temp,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   contract.Name,
				Schema: &def,
				Strict: true,
			},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		// Timeout and cancellation arrive here wrapped by the SDK.
		return nil, &Error{Contract: contract.Name, Err: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, &Error{
			Contract: contract.Name,
			Err:      fmt.Errorf("no content in completion response"),
		}
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return nil, &Error{
			Contract: contract.Name,
			Err:      fmt.Errorf("response is not a JSON object: %w", err),
		}
	}
	return out, nil
}
