package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ClientConfig points the OpenAI client at the official API or any
// OpenAI-compatible endpoint.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	// Timeout of zero keeps the library's default HTTP client.
	Timeout time.Duration
}

func NewOpenAICompatibleClient(cfg ClientConfig) *openai.Client {
	conf := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		conf.BaseURL = base
	}
	if cfg.Timeout > 0 {
		conf.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return openai.NewClientWithConfig(conf)
}

type chatRequest struct {
	model     string
	system    string
	user      string
	maxTokens int
}

func complete(ctx context.Context, client *openai.Client, req chatRequest) (string, error) {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.system},
			{Role: openai.ChatMessageRoleUser, Content: req.user},
		},
		MaxTokens: req.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty llm choices")
	}
	return resp.Choices[0].Message.Content, nil
}
