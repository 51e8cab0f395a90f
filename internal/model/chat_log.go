package model

import "time"

type ChatLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	Question   string    `gorm:"type:text;not null" json:"question"`
	Answer     string    `gorm:"type:text;not null" json:"answer"`
	CreatedAt  time.Time `json:"created_at"`
}
