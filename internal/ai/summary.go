package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"gopherai-docqa/internal/apperror"
)

const (
	DefaultSummaryMaxTokens = 300

	summarySystemPrompt = "You are a document summarization expert. " +
		"Provide a clear, concise summary of the document, highlighting key points " +
		"and main ideas. Format the summary in a reader-friendly way."
)

type Summarizer struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewSummarizer(client *openai.Client, model string, maxTokens int) *Summarizer {
	if model == "" {
		model = openai.GPT4o
	}
	if maxTokens <= 0 {
		maxTokens = DefaultSummaryMaxTokens
	}
	return &Summarizer{client: client, model: model, maxTokens: maxTokens}
}

func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	input := PrepareInput(text, SummaryInputLimit)
	if input == "" {
		return "", apperror.Wrap(apperror.SummaryGeneration, errors.New("summary input is empty"))
	}

	out, err := complete(ctx, s.client, chatRequest{
		model:     s.model,
		system:    summarySystemPrompt,
		user:      input,
		maxTokens: s.maxTokens,
	})
	if err != nil {
		return "", apperror.Wrap(apperror.SummaryGeneration, err)
	}
	return strings.TrimSpace(out), nil
}
