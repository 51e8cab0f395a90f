package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"gopherai-docqa/internal/apperror"
)

const answerSystemPrompt = "You are a document analysis expert. " +
	"Answer questions based on the provided document content. " +
	"Include relevant quotes or references when possible. " +
	"If you're not sure about something, acknowledge the uncertainty."

type Answerer struct {
	client *openai.Client
	model  string
}

func NewAnswerer(client *openai.Client, model string) *Answerer {
	if model == "" {
		model = openai.GPT4o
	}
	return &Answerer{client: client, model: model}
}

// Answer asks the model about one document. Only the document text is
// truncated; the question is sent as given.
func (a *Answerer) Answer(ctx context.Context, question, docText string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", apperror.New(apperror.Validation, "question is empty")
	}

	out, err := complete(ctx, a.client, chatRequest{
		model:  a.model,
		system: answerSystemPrompt,
		user:   answerPrompt(question, PrepareInput(docText, AnswerInputLimit)),
	})
	if err != nil {
		return "", apperror.Wrap(apperror.QuestionAnswering, err)
	}
	answer := strings.TrimSpace(out)
	if answer == "" {
		return "", apperror.Wrap(apperror.QuestionAnswering, errors.New("empty answer"))
	}
	return answer, nil
}

func answerPrompt(question, docText string) string {
	return "Document content:\n" + docText + "\n\nQuestion: " + question
}
