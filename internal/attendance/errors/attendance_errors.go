package attendanceerrors

import (
	"net/http"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/apperror"
)

var (
	ErrDuplicateClockIn = apperror.New(
		apperror.CodeConflict,
		"Already clocked in, clock out first",
		http.StatusConflict,
	)

	ErrNoOpenRecord = apperror.New(
		apperror.CodeInvalidState,
		"No open attendance record to clock out",
		http.StatusUnprocessableEntity,
	)

	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)
)
