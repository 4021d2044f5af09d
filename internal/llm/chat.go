// Package llm provides the chat-completion backend behind any
// OpenAI-compatible endpoint.
package llm

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"codevox/internal/convo"
)

// Groq serves the llama3 chat models over the OpenAI wire protocol.
const (
	GroqBaseURL      = "https://api.groq.com/openai/v1"
	DefaultGroqModel = "llama3-70b-8192"
)

// Client wraps one chat-completion endpoint and model.
type Client struct {
	api   openai.Client
	model openai.ChatModel
}

// New builds a client for the endpoint at baseURL. An empty baseURL keeps
// the SDK default; a nil httpClient keeps the default transport.
func New(apiKey, baseURL, model string, httpClient *http.Client) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &Client{
		api:   openai.NewClient(opts...),
		model: openai.ChatModel(model),
	}
}

// Complete sends the ordered turn history and returns the assistant text.
func (c *Client) Complete(ctx context.Context, turns []convo.Turn) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case convo.RoleUser:
			msgs = append(msgs, openai.UserMessage(t.Content))
		default:
			msgs = append(msgs, openai.SystemMessage(t.Content))
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    c.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty message content")
	}

	return content, nil
}
