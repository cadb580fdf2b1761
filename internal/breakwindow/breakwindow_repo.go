package breakwindow

import (
	"context"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/connection"
)

//go:generate mockgen -source=breakwindow_repo.go -destination=mock/breakwindow_repo_mock.go -package=mock
type Repository interface {
	Count(ctx context.Context) (int64, error)
	FindAll(ctx context.Context) ([]BreakWindow, error)
	FindActive(ctx context.Context) ([]BreakWindow, error)
	FindByID(ctx context.Context, id string) (*BreakWindow, error)
	Create(ctx context.Context, w *BreakWindow) error
	Update(ctx context.Context, w *BreakWindow) error
}

type repository struct {
	ds *connection.DataSource
}

func NewRepository(ds *connection.DataSource) Repository {
	return &repository{ds: ds}
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	err = db.WithContext(ctx).Model(&BreakWindow{}).Count(&n).Error
	return n, err
}

func (r *repository) FindAll(ctx context.Context) ([]BreakWindow, error) {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var rows []BreakWindow
	err = db.WithContext(ctx).
		Order("start_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindActive(ctx context.Context) ([]BreakWindow, error) {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var rows []BreakWindow
	err = db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("start_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*BreakWindow, error) {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var w BreakWindow
	err = db.WithContext(ctx).Where("id = ?", id).First(&w).Error
	return &w, err
}

func (r *repository) Create(ctx context.Context, w *BreakWindow) error {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(w).Error
}

func (r *repository) Update(ctx context.Context, w *BreakWindow) error {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Save(w).Error
}
