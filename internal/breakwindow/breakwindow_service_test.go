package breakwindow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/breakwindow"
	mock_breakwindow "github.com/takeshikato0219/campervan-time-manager-sub001/internal/breakwindow/mock"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

func TestBreakWindowService_SeedDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds lunch and evening when table is empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mock_breakwindow.NewMockRepository(ctrl)
		svc := breakwindow.NewService(mockRepo)

		mockRepo.EXPECT().Count(gomock.Any()).Return(int64(0), nil)

		var seeded []breakwindow.BreakWindow
		mockRepo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w *breakwindow.BreakWindow) error {
				seeded = append(seeded, *w)
				return nil
			}).
			Times(2)

		assert.NoError(t, svc.SeedDefaults(ctx))
		assert.Len(t, seeded, 2)
		assert.Equal(t, "lunch", seeded[0].Name)
		assert.Equal(t, "12:00", seeded[0].StartTime)
		assert.Equal(t, "13:00", seeded[0].EndTime)
		assert.Equal(t, "evening", seeded[1].Name)
		assert.Equal(t, "17:30", seeded[1].StartTime)
		assert.Equal(t, "17:45", seeded[1].EndTime)
	})

	t.Run("leaves a populated table alone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mock_breakwindow.NewMockRepository(ctrl)
		svc := breakwindow.NewService(mockRepo)

		mockRepo.EXPECT().Count(gomock.Any()).Return(int64(2), nil)

		assert.NoError(t, svc.SeedDefaults(ctx))
	})

	t.Run("skips silently when storage is unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mock_breakwindow.NewMockRepository(ctrl)
		svc := breakwindow.NewService(mockRepo)

		mockRepo.EXPECT().Count(gomock.Any()).Return(int64(0), apperror.ErrServiceUnavailable)

		assert.NoError(t, svc.SeedDefaults(ctx))
	})
}

func TestBreakWindowService_ActiveWindows(t *testing.T) {
	ctx := context.Background()

	t.Run("returns active rows", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mock_breakwindow.NewMockRepository(ctrl)
		svc := breakwindow.NewService(mockRepo)

		mockRepo.EXPECT().
			FindActive(gomock.Any()).
			Return([]breakwindow.BreakWindow{
				{Name: "lunch", StartTime: "12:00", EndTime: "13:00", IsActive: true},
			}, nil)

		rows, err := svc.ActiveWindows(ctx)
		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, "lunch", rows[0].Name)
	})

	t.Run("degrades to no windows when storage is unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mock_breakwindow.NewMockRepository(ctrl)
		svc := breakwindow.NewService(mockRepo)

		mockRepo.EXPECT().
			FindActive(gomock.Any()).
			Return(nil, apperror.ErrServiceUnavailable)

		rows, err := svc.ActiveWindows(ctx)
		assert.NoError(t, err)
		assert.Nil(t, rows)
	})
}

func TestBreakWindowService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a malformed start time", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mock_breakwindow.NewMockRepository(ctrl)
		svc := breakwindow.NewService(mockRepo)

		_, err := svc.Create(ctx, breakwindow.CreateBreakWindowRequest{
			Name:      "night",
			StartTime: "25:99",
			EndTime:   "02:00",
		})
		assert.Error(t, err)
	})

	t.Run("defaults to active", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mock_breakwindow.NewMockRepository(ctrl)
		svc := breakwindow.NewService(mockRepo)

		mockRepo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w *breakwindow.BreakWindow) error {
				assert.True(t, w.IsActive)
				return nil
			})

		resp, err := svc.Create(ctx, breakwindow.CreateBreakWindowRequest{
			Name:            "night",
			StartTime:       "23:00",
			EndTime:         "01:00",
			DurationMinutes: 120,
		})
		assert.NoError(t, err)
		assert.True(t, resp.IsActive)
	})
}

func TestBreakWindowService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only provided fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mock_breakwindow.NewMockRepository(ctrl)
		svc := breakwindow.NewService(mockRepo)

		id := uuid.New()
		mockRepo.EXPECT().
			FindByID(gomock.Any(), id.String()).
			Return(&breakwindow.BreakWindow{
				ID: id, Name: "lunch", StartTime: "12:00", EndTime: "13:00", IsActive: true,
			}, nil)
		mockRepo.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w *breakwindow.BreakWindow) error {
				assert.Equal(t, "12:00", w.StartTime)
				assert.Equal(t, "13:20", w.EndTime)
				return nil
			})

		end := "13:20"
		resp, err := svc.Update(ctx, id.String(), breakwindow.UpdateBreakWindowRequest{EndTime: &end})
		assert.NoError(t, err)
		assert.Equal(t, "13:20", resp.EndTime)
	})

	t.Run("unknown id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mock_breakwindow.NewMockRepository(ctrl)
		svc := breakwindow.NewService(mockRepo)

		mockRepo.EXPECT().
			FindByID(gomock.Any(), "missing").
			Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Update(ctx, "missing", breakwindow.UpdateBreakWindowRequest{})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("repository error surfaces", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mock_breakwindow.NewMockRepository(ctrl)
		svc := breakwindow.NewService(mockRepo)

		mockRepo.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("db error"))

		res, err := svc.GetAll(ctx)
		assert.Error(t, err)
		assert.Nil(t, res)
	})
}
