package attendance

import (
	"errors"
	"strings"

	attendanceerrors "github.com/takeshikato0219/campervan-time-manager-sub001/internal/attendance/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// mapRepositoryError translates storage errors into domain errors.
// The partial unique index over open records turns the clock-in
// check-then-act race into a unique violation, which surfaces here as
// a plain duplicate.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrAttendanceNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_attendances_open" {
			return attendanceerrors.ErrDuplicateClockIn
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_attendances_open") {
		return attendanceerrors.ErrDuplicateClockIn
	}

	return err
}
