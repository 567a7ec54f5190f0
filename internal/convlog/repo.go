package convlog

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

func (r *Repo) Create(ctx context.Context, rec *Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Record, error) {
	var rec Record
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) GetBySessionID(ctx context.Context, sessionID string) (*Record, error) {
	var rec Record
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) UpdateStatusRunning(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Record{}).
		Where("id = ? AND status = ?", id, SummaryPending).
		Update("status", SummaryRunning).Error
}

func (r *Repo) MarkSummarized(ctx context.Context, id, summary string) error {
	return r.db.WithContext(ctx).Model(&Record{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  Summarized,
			"summary": summary,
			"error":   nil,
		}).Error
}

func (r *Repo) MarkFailed(ctx context.Context, id, errMsg string) error {
	return r.db.WithContext(ctx).Model(&Record{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  SummaryFailed,
			"error":   errMsg,
			"summary": nil,
		}).Error
}
