package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"gopherai-docqa/internal/apperror"
)

const DefaultEmbeddingDim = 1536

type Embedder struct {
	client *openai.Client
	model  string
	dim    int
}

// NewEmbedder returns an embedding client; dim <= 0 disables the dimension check.
func NewEmbedder(client *openai.Client, model string, dim int) *Embedder {
	if model == "" {
		model = string(openai.AdaEmbeddingV2)
	}
	return &Embedder{client: client, model: model, dim: dim}
}

// Embed returns the vector of the first EmbeddingInputLimit characters of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	input := PrepareInput(text, EmbeddingInputLimit)
	if input == "" {
		return nil, apperror.Wrap(apperror.EmbeddingGeneration, errors.New("embedding input is empty"))
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{input},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.EmbeddingGeneration, fmt.Errorf("embedding request failed: %w", err))
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, apperror.Wrap(apperror.EmbeddingGeneration, errors.New("empty embedding in response"))
	}
	vec := resp.Data[0].Embedding
	if e.dim > 0 && len(vec) != e.dim {
		return nil, apperror.Wrap(apperror.EmbeddingGeneration,
			fmt.Errorf("embedding dimension %d, want %d", len(vec), e.dim))
	}
	return vec, nil
}
