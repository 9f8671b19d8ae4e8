package catalog

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles document catalog operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a Repository bound to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert creates or updates a document record keyed by URL, so repeated
// downloads of the same page refresh the existing entry.
func (r *Repository) Upsert(ctx context.Context, doc *Document) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		UpdateAll: true,
	}).Create(doc).Error
}

// GetByID retrieves a document by its ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns documents ordered by download time, optionally filtered
// by category.
func (r *Repository) List(ctx context.Context, category string, limit, offset int) ([]Document, error) {
	var docs []Document
	q := r.db.WithContext(ctx).Order("downloaded_at DESC").Limit(limit).Offset(offset)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Count returns the total number of documents, optionally filtered by
// category.
func (r *Repository) Count(ctx context.Context, category string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&Document{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CategoryCount is one row of the category tally.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// CountByCategory tallies documents per category.
func (r *Repository) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	var counts []CategoryCount
	err := r.db.WithContext(ctx).
		Model(&Document{}).
		Select("category, count(*) as count").
		Group("category").
		Order("category").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
