package breakwindow

import (
	"context"
	"errors"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/apperror"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/connection"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

//go:generate mockgen -source=breakwindow_service.go -destination=mock/breakwindow_service_mock.go -package=mock
type Service interface {
	SeedDefaults(ctx context.Context) error
	GetAll(ctx context.Context) ([]BreakWindowResponse, error)
	Create(ctx context.Context, req CreateBreakWindowRequest) (BreakWindowResponse, error)
	Update(ctx context.Context, id string, req UpdateBreakWindowRequest) (BreakWindowResponse, error)
	ActiveWindows(ctx context.Context) ([]BreakWindow, error)
}

type service struct {
	repo  Repository
	group singleflight.Group
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// SeedDefaults inserts the stock windows on first boot only. An existing
// table, even a fully deactivated one, is left alone.
func (s *service) SeedDefaults(ctx context.Context) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		if connection.IsUnavailable(err) {
			zap.L().Named("breakwindow").Warn("seed skipped, storage unavailable")
			return nil
		}
		return err
	}
	if n > 0 {
		return nil
	}

	defaults := []BreakWindow{
		{Name: "lunch", StartTime: "12:00", EndTime: "13:00", DurationMinutes: 60, IsActive: true},
		{Name: "evening", StartTime: "17:30", EndTime: "17:45", DurationMinutes: 15, IsActive: true},
	}
	for i := range defaults {
		if err := s.repo.Create(ctx, &defaults[i]); err != nil {
			return err
		}
	}
	zap.L().Named("breakwindow").Info("default break windows seeded", zap.Int("count", len(defaults)))
	return nil
}

func (s *service) GetAll(ctx context.Context) ([]BreakWindowResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		if connection.IsUnavailable(err) {
			return []BreakWindowResponse{}, nil
		}
		return nil, err
	}
	res := make([]BreakWindowResponse, len(rows))
	for i, w := range rows {
		res[i] = mapToResponse(w)
	}
	return res, nil
}

func (s *service) Create(ctx context.Context, req CreateBreakWindowRequest) (BreakWindowResponse, error) {
	if _, _, ok := parseWallClock(req.StartTime); !ok {
		return BreakWindowResponse{}, apperror.InvalidField("Start Time")
	}
	if _, _, ok := parseWallClock(req.EndTime); !ok {
		return BreakWindowResponse{}, apperror.InvalidField("End Time")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	w := &BreakWindow{
		ID:              uuid.New(),
		Name:            req.Name,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		IsActive:        active,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return BreakWindowResponse{}, err
	}
	return mapToResponse(*w), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateBreakWindowRequest) (BreakWindowResponse, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BreakWindowResponse{}, apperror.ErrNotFound
		}
		return BreakWindowResponse{}, err
	}

	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.StartTime != nil {
		if _, _, ok := parseWallClock(*req.StartTime); !ok {
			return BreakWindowResponse{}, apperror.InvalidField("Start Time")
		}
		w.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		if _, _, ok := parseWallClock(*req.EndTime); !ok {
			return BreakWindowResponse{}, apperror.InvalidField("End Time")
		}
		w.EndTime = *req.EndTime
	}
	if req.DurationMinutes != nil {
		w.DurationMinutes = *req.DurationMinutes
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, w); err != nil {
		return BreakWindowResponse{}, err
	}
	return mapToResponse(*w), nil
}

// ActiveWindows is the engine-facing read. Concurrent callers share one
// storage round trip; an unreachable store degrades to "no windows".
func (s *service) ActiveWindows(ctx context.Context) ([]BreakWindow, error) {
	v, err, _ := s.group.Do("active", func() (any, error) {
		return s.repo.FindActive(ctx)
	})
	if err != nil {
		if connection.IsUnavailable(err) {
			return nil, nil
		}
		return nil, err
	}
	return v.([]BreakWindow), nil
}

func mapToResponse(w BreakWindow) BreakWindowResponse {
	return BreakWindowResponse{
		ID:              w.ID.String(),
		Name:            w.Name,
		StartTime:       w.StartTime,
		EndTime:         w.EndTime,
		DurationMinutes: w.DurationMinutes,
		IsActive:        w.IsActive,
	}
}
