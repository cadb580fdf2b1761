package attendance

import (
	"context"
	"time"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/connection"
)

// attendanceProjection orders the column tiers tried on wide reads.
// When the live schema predates the device columns (or the duration
// column) the read degrades tier by tier instead of failing; dropped
// fields surface as nulls.
var attendanceProjection = connection.Projection{Tiers: [][]string{
	{"id", "user_id", "clock_in", "clock_out", "work_duration_minutes", "clock_in_device", "clock_out_device", "created_at", "updated_at"},
	{"id", "user_id", "clock_in", "clock_out", "work_duration_minutes", "created_at", "updated_at"},
	{"id", "user_id", "clock_in", "clock_out"},
}}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, a *Attendance) error
	Update(ctx context.Context, a *Attendance) error
	FindByID(ctx context.Context, id string) (*Attendance, error)
	FindOpenByUser(ctx context.Context, userID string) (*Attendance, error)
	FindByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]Attendance, error)
	FindOpenBetween(ctx context.Context, from, to time.Time) ([]Attendance, error)
	FindAll(ctx context.Context) ([]Attendance, error)
	FindAllByUser(ctx context.Context, userID string) ([]Attendance, error)
	CreateEditLog(ctx context.Context, l *EditLog) error
}

type repository struct {
	ds *connection.DataSource
}

func NewRepository(ds *connection.DataSource) Repository {
	return &repository{ds: ds}
}

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(a).Error
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Save(a).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Attendance, error) {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var a Attendance
	err = attendanceProjection.Walk(func(cols []string) error {
		a = Attendance{}
		return db.WithContext(ctx).
			Select(cols).
			Where("id = ?", id).
			First(&a).Error
	})
	return &a, err
}

func (r *repository) FindOpenByUser(ctx context.Context, userID string) (*Attendance, error) {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var a Attendance
	err = attendanceProjection.Walk(func(cols []string) error {
		a = Attendance{}
		return db.WithContext(ctx).
			Select(cols).
			Where("user_id = ?", userID).
			Where("clock_out IS NULL").
			First(&a).Error
	})
	return &a, err
}

func (r *repository) FindByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]Attendance, error) {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var rows []Attendance
	err = attendanceProjection.Walk(func(cols []string) error {
		rows = nil
		return db.WithContext(ctx).
			Select(cols).
			Where("user_id = ?", userID).
			Where("clock_in >= ? AND clock_in < ?", from, to).
			Order("clock_in ASC").
			Find(&rows).Error
	})
	return rows, err
}

func (r *repository) FindOpenBetween(ctx context.Context, from, to time.Time) ([]Attendance, error) {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var rows []Attendance
	err = attendanceProjection.Walk(func(cols []string) error {
		rows = nil
		return db.WithContext(ctx).
			Select(cols).
			Where("clock_out IS NULL").
			Where("clock_in >= ? AND clock_in < ?", from, to).
			Order("clock_in ASC").
			Find(&rows).Error
	})
	return rows, err
}

func (r *repository) FindAll(ctx context.Context) ([]Attendance, error) {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var rows []Attendance
	err = attendanceProjection.Walk(func(cols []string) error {
		rows = nil
		return db.WithContext(ctx).
			Select(cols).
			Order("clock_in DESC").
			Find(&rows).Error
	})
	return rows, err
}

func (r *repository) FindAllByUser(ctx context.Context, userID string) ([]Attendance, error) {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	var rows []Attendance
	err = attendanceProjection.Walk(func(cols []string) error {
		rows = nil
		return db.WithContext(ctx).
			Select(cols).
			Where("user_id = ?", userID).
			Order("clock_in DESC").
			Find(&rows).Error
	})
	return rows, err
}

func (r *repository) CreateEditLog(ctx context.Context, l *EditLog) error {
	db, err := r.ds.Acquire(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(l).Error
}
