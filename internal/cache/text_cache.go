package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// TextCache keeps the extracted text of a document so repeated questions
// do not re-read the file.
type TextCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewTextCache(client *redisv9.Client, ttl time.Duration) *TextCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TextCache{client: client, ttl: ttl}
}

func (c *TextCache) GetText(ctx context.Context, documentID uint) (string, bool, error) {
	raw, err := c.client.Get(ctx, c.textKey(documentID)).Result()
	if errors.Is(err, redisv9.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get document text failed: %w", err)
	}
	return raw, true, nil
}

func (c *TextCache) SetText(ctx context.Context, documentID uint, text string) error {
	if err := c.client.Set(ctx, c.textKey(documentID), text, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set document text failed: %w", err)
	}
	return nil
}

func (c *TextCache) DeleteText(ctx context.Context, documentID uint) error {
	if err := c.client.Del(ctx, c.textKey(documentID)).Err(); err != nil {
		return fmt.Errorf("redis delete document text failed: %w", err)
	}
	return nil
}

func (c *TextCache) textKey(documentID uint) string {
	return fmt.Sprintf("docqa:document:text:%d", documentID)
}
