// Package mood talks to the chat-completion API: it builds an emotion-to-color
// mapping for a mood, classifies the mood's sentiment, and describes
// generated images.
package mood

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoChoices is returned when the API replies without any completion.
var ErrNoChoices = errors.New("chat completion returned no choices")

// Completer is the subset of *openai.Client the analyzer needs.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ClientOptions configures the underlying OpenAI-compatible client.
type ClientOptions struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewClient builds an OpenAI client. An empty BaseURL keeps the library default.
func NewClient(opts ClientOptions) *openai.Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return openai.NewClientWithConfig(cfg)
}

func firstContent(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
