package repository

import (
	"fmt"

	"gorm.io/gorm"

	"gopherai-docqa/internal/model"
)

type ChatLogRepository struct {
	db *gorm.DB
}

func NewChatLogRepository(db *gorm.DB) *ChatLogRepository {
	return &ChatLogRepository{db: db}
}

func (r *ChatLogRepository) Create(log *model.ChatLog) error {
	if err := r.db.Create(log).Error; err != nil {
		return fmt.Errorf("create chat log failed: %w", err)
	}
	return nil
}

// ListByUserAndDocument returns the oldest-first conversation of one user about one document.
func (r *ChatLogRepository) ListByUserAndDocument(userID, documentID uint, limit int) ([]model.ChatLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var logs []model.ChatLog
	if err := r.db.Where("user_id = ? AND document_id = ?", userID, documentID).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list chat logs failed: %w", err)
	}
	return logs, nil
}
