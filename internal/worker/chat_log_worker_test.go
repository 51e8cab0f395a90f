package worker

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherai-docqa/internal/model"
)

type memoryStore struct {
	entries []model.ChatLog
	err     error
}

func (m *memoryStore) Create(entry *model.ChatLog) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func TestHandlePersistsChatLog(t *testing.T) {
	store := &memoryStore{}
	w := NewChatLogWorker(nil, store, "q")

	body, err := json.Marshal(model.ChatLog{
		ID: 99, UserID: 1, DocumentID: 2,
		Question: "What is the revenue?", Answer: "12%",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, w.handle(body))
	require.Len(t, store.entries, 1)
	assert.Zero(t, store.entries[0].ID)
	assert.Equal(t, "What is the revenue?", store.entries[0].Question)
}

func TestHandleRejectsBadPayloads(t *testing.T) {
	store := &memoryStore{}
	w := NewChatLogWorker(nil, store, "q")

	assert.Error(t, w.handle([]byte("not json")))
	assert.Error(t, w.handle([]byte(`{"question":"q","answer":"a"}`)))
	assert.Empty(t, store.entries)

	store.err = errors.New("db down")
	assert.Error(t, w.handle([]byte(`{"user_id":1,"document_id":2,"question":"q","answer":"a"}`)))
}
