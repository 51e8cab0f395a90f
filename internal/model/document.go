package model

import (
	"strconv"
	"time"
)

// Document is the metadata row of one uploaded file.
// Filename is the generated storage name; OriginalFilename is what users see.
type Document struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Filename         string    `gorm:"size:255;not null;uniqueIndex" json:"filename"`
	OriginalFilename string    `gorm:"size:255;not null" json:"original_filename"`
	FileType         FileType  `gorm:"size:16;not null" json:"file_type"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	Summary          *string   `gorm:"type:text" json:"summary,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// VectorID is the key of the document's entry in the vector index.
func (d *Document) VectorID() string {
	return strconv.FormatUint(uint64(d.ID), 10)
}
