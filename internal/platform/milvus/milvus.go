package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
)

// New dials a Milvus (or Zilliz Cloud) endpoint. apiKey may be empty for
// an unauthenticated local instance.
func New(ctx context.Context, address, apiKey string) (client.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c, err := client.NewClient(dialCtx, client.Config{
		Address: address,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus failed: %w", err)
	}
	return c, nil
}
