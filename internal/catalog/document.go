// Package catalog indexes downloaded documents in a relational store so
// the archive can be browsed and audited after a run.
package catalog

import "time"

// Document is one downloaded Markdown document in the archive.
type Document struct {
	ID           string    `gorm:"type:text;primaryKey" json:"id"`
	Title        string    `gorm:"type:text;not null" json:"title"`
	URL          string    `gorm:"type:text;not null;uniqueIndex" json:"url"`
	Category     string    `gorm:"type:text;index" json:"category"`
	Path         string    `gorm:"type:text;not null" json:"path"`
	Size         int64     `gorm:"default:0" json:"size"`
	DownloadedAt time.Time `json:"downloaded_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Document.
func (Document) TableName() string {
	return "documents"
}
