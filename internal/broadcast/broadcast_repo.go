package broadcast

import (
	"context"
	"time"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/connection"

	"github.com/google/uuid"
)

//go:generate mockgen -source=broadcast_repo.go -destination=mock/broadcast_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, b *Broadcast) error
	FindActive(ctx context.Context, now time.Time) ([]Broadcast, error)
	FindExpired(ctx context.Context, now time.Time) ([]Broadcast, error)
	FindReceipts(ctx context.Context, userID string, broadcastIDs []uuid.UUID) ([]ReadReceipt, error)
	CreateReceipt(ctx context.Context, r *ReadReceipt) error
	DeleteReceiptsByBroadcastIDs(ctx context.Context, ids []uuid.UUID) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

type repository struct {
	ds *connection.DataSource
}

func NewRepository(ds *connection.DataSource) Repository {
	return &repository{ds: ds}
}

func (r *repository) Create(ctx context.Context, b *Broadcast) error {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(b).Error
}

func (r *repository) FindActive(ctx context.Context, now time.Time) ([]Broadcast, error) {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var rows []Broadcast
	err = db.WithContext(ctx).
		Where("expires_at > ?", now).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindExpired(ctx context.Context, now time.Time) ([]Broadcast, error) {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var rows []Broadcast
	err = db.WithContext(ctx).
		Where("expires_at < ?", now).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindReceipts(ctx context.Context, userID string, broadcastIDs []uuid.UUID) ([]ReadReceipt, error) {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var rows []ReadReceipt
	err = db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("broadcast_id IN ?", broadcastIDs).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateReceipt(ctx context.Context, rr *ReadReceipt) error {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(rr).Error
}

func (r *repository) DeleteReceiptsByBroadcastIDs(ctx context.Context, ids []uuid.UUID) error {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).
		Where("broadcast_id IN ?", ids).
		Delete(&ReadReceipt{}).Error
}

func (r *repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&Broadcast{}).Error
}
