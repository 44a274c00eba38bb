package textgen

import (
	"context"
	"strings"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/aymen-fkir/sku-review-generator/internal/config"
)

// OpenAI generates text with an OpenAI-compatible chat completions endpoint,
// such as api.openai.com or a local llama.cpp server.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI backend. A BaseURL without an API key targets a
// local server that does not check keys.
func NewOpenAI(cfg config.LLMConfig) *OpenAI {
	opts := []option.RequestOption{
		option.WithRequestTimeout(cfg.RequestTimeout()),
		option.WithMaxRetries(2),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	key := cfg.APIKey
	if key == "" && cfg.BaseURL != "" {
		key = "dummy"
	}
	if key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	return NewOpenAIWithClient(openai.NewClient(opts...), cfg.Model)
}

// NewOpenAIWithClient wraps an existing client.
func NewOpenAIWithClient(client openai.Client, model string) *OpenAI {
	return &OpenAI{client: client, model: model}
}

// Generate sends one chat completion request.
func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       shared.ChatModel(o.model),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Schema != nil {
		params.ResponseFormat = responseFormat(req.SchemaName, req.Schema)
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func responseFormat(name string, schema any) openai.ChatCompletionNewParamsResponseFormatUnion {
	if name == "" {
		name = "response"
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   name,
				Schema: schema,
				Strict: openai.Bool(true),
			},
		},
	}
}
