package history

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Insert(ctx context.Context, e *Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// ListRecentDesc returns the most recent entries for an identity in DESC id
// order (newest -> oldest). Insertion order tracks completion time, so id
// order is timestamp order.
func (r *Repo) ListRecentDesc(ctx context.Context, identity string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 5
	}
	var entries []Entry
	if err := r.db.WithContext(ctx).
		Where("identity = ?", identity).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
