package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document is the backing row of the document store: one JSON object per (collection, doc id).
type Document struct {
	ID         uint           `gorm:"primaryKey"`
	Collection string         `gorm:"size:64;not null;uniqueIndex:idx_documents_key"`
	DocID      string         `gorm:"size:128;not null;uniqueIndex:idx_documents_key"`
	Data       datatypes.JSON `gorm:"not null"`
	Version    int64          `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
