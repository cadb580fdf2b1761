package connection

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// pgUndefinedColumn is the class 42 code Postgres raises when a query
// references a column missing from the live schema.
const pgUndefinedColumn = "42703"

// DataSource owns the single shared connection pool. It opens lazily on
// first Acquire, probes liveness on every Acquire, and tears the pool
// down on connectivity failure so the next call rebuilds from scratch.
// It never retries internally; retry policy belongs to the caller.
//
// A probe that fails only because an optional column has not been
// migrated yet (schema drift) is non-fatal: the pool is kept and
// repositories degrade to narrower projections instead.
type DataSource struct {
	mu       sync.Mutex
	dsn      string
	db       *gorm.DB
	degraded bool
	logger   *zap.Logger

	// opener is swappable in tests; it defaults to a real postgres open.
	opener func() (*gorm.DB, error)
}

func NewDataSource(dsn string, logger *zap.Logger) *DataSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DataSource{dsn: dsn, logger: logger.Named("connection.datasource")}
	s.opener = s.openPostgres
	return s
}

// Acquire returns the shared gorm handle. A SERVICE_UNAVAILABLE error
// means storage is currently unreachable (or was never configured).
func (s *DataSource) Acquire(ctx context.Context) (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dsn == "" {
		return nil, apperror.ErrServiceUnavailable
	}

	if s.db == nil {
		db, err := s.opener()
		if err != nil {
			return nil, unavailable(err)
		}
		s.db = db
	}

	if err := s.probeLocked(ctx); err != nil {
		if IsMissingColumn(err) {
			if !s.degraded {
				s.logger.Warn("schema drift detected, serving degraded projections", zap.Error(err))
				s.degraded = true
			}
			return s.db, nil
		}
		s.logger.Error("liveness probe failed, tearing down pool", zap.Error(err))
		s.teardownLocked()
		return nil, unavailable(err)
	}

	s.degraded = false
	return s.db, nil
}

// Reset discards the cached pool. The next Acquire rebuilds it.
func (s *DataSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

// Degraded reports whether the last probe saw schema drift.
func (s *DataSource) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *DataSource) openPostgres() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(s.dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Pool config
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s.logger.Info("database pool opened")
	return db, nil
}

// probeLocked issues a minimal read that touches an optional column, so
// both connectivity loss and schema drift surface here.
func (s *DataSource) probeLocked(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("SELECT clock_out_device FROM attendances LIMIT 1").Error
}

func (s *DataSource) teardownLocked() {
	if s.db == nil {
		return
	}
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	s.db = nil
	s.degraded = false
}

// IsMissingColumn classifies an error as schema drift.
func IsMissingColumn(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedColumn
}

// IsUnavailable reports whether err came from an unreachable store.
func IsUnavailable(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Code == apperror.CodeServiceUnavailable
}

func unavailable(err error) error {
	return apperror.Wrap(
		err,
		apperror.CodeServiceUnavailable,
		"Storage is temporarily unavailable",
		http.StatusServiceUnavailable,
	)
}
