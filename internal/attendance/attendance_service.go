package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	attendanceerrors "github.com/takeshikato0219/campervan-time-manager-sub001/internal/attendance/errors"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/breakwindow"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/events"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/messaging/kafka"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/apperror"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/shared/connection"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	ClockIn(ctx context.Context, userID string, req ClockInRequest) (AttendanceResponse, error)
	ClockOut(ctx context.Context, userID, device string) (AttendanceResponse, error)
	AdminClockIn(ctx context.Context, req AdminClockInRequest) (AttendanceResponse, error)
	AdminClockOut(ctx context.Context, req AdminClockOutRequest) (AttendanceResponse, error)
	Update(ctx context.Context, attendanceID, editorID string, req UpdateAttendanceRequest) (AttendanceResponse, error)
	GetAll(ctx context.Context, actorID string, canReadAll bool) ([]AttendanceResponse, error)
	AutoCloseOpenRecords(ctx context.Context, now time.Time) (int, error)
}

// WindowSource is what the engine needs from the break-window module.
type WindowSource interface {
	ActiveWindows(ctx context.Context) ([]breakwindow.BreakWindow, error)
}

type service struct {
	repo    Repository
	windows WindowSource
	outbox  kafka.OutboxRepository
	now     func() time.Time
}

func NewService(repo Repository, windows WindowSource) Service {
	return &service{repo: repo, windows: windows, now: time.Now}
}

func NewServiceWithOutbox(repo Repository, windows WindowSource, outbox kafka.OutboxRepository) Service {
	return &service{repo: repo, windows: windows, outbox: outbox, now: time.Now}
}

func (s *service) ClockIn(ctx context.Context, userID string, req ClockInRequest) (AttendanceResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return AttendanceResponse{}, apperror.New(apperror.CodeInvalidInput, "invalid user id", http.StatusBadRequest)
	}

	now := s.now()
	if err := s.rejectSameDayClockIn(ctx, userID, now); err != nil {
		return AttendanceResponse{}, err
	}

	device := req.Device
	if device == "" {
		device = DevicePC
	}

	row := &Attendance{
		ID:            uuid.New(),
		UserID:        uid,
		ClockIn:       now,
		ClockInDevice: &device,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*row), nil
}

func (s *service) ClockOut(ctx context.Context, userID, device string) (AttendanceResponse, error) {
	row, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrNoOpenRecord
		}
		return AttendanceResponse{}, err
	}

	return s.closeRecord(ctx, row, s.now(), device)
}

// AdminClockIn records a clock-in on behalf of a user with a supplied
// timestamp. The same-day duplicate guard applies against the supplied
// timestamp's local day, not "now".
func (s *service) AdminClockIn(ctx context.Context, req AdminClockInRequest) (AttendanceResponse, error) {
	uid, err := uuid.Parse(req.UserID)
	if err != nil {
		return AttendanceResponse{}, apperror.New(apperror.CodeInvalidInput, "invalid user id", http.StatusBadRequest)
	}

	if err := s.rejectSameDayClockIn(ctx, req.UserID, req.ClockIn); err != nil {
		return AttendanceResponse{}, err
	}

	device := req.Device
	if device == "" {
		device = DevicePC
	}

	row := &Attendance{
		ID:            uuid.New(),
		UserID:        uid,
		ClockIn:       req.ClockIn,
		ClockInDevice: &device,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*row), nil
}

func (s *service) AdminClockOut(ctx context.Context, req AdminClockOutRequest) (AttendanceResponse, error) {
	row, err := s.repo.FindOpenByUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrNoOpenRecord
		}
		return AttendanceResponse{}, err
	}

	return s.closeRecord(ctx, row, req.ClockOut, DevicePC)
}

// Update applies only the fields the caller provided, recomputes the
// duration when the resulting record has a clock-out, and appends one
// audit row per changed field. The record update and the audit inserts
// are independent writes; a crash in between leaves the edit applied
// without its trail.
func (s *service) Update(ctx context.Context, attendanceID, editorID string, req UpdateAttendanceRequest) (AttendanceResponse, error) {
	editor, err := uuid.Parse(editorID)
	if err != nil {
		return AttendanceResponse{}, apperror.New(apperror.CodeInvalidInput, "invalid editor id", http.StatusBadRequest)
	}

	row, err := s.repo.FindByID(ctx, attendanceID)
	if err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	var logs []EditLog
	if req.ClockIn != nil && !req.ClockIn.Equal(row.ClockIn) {
		old := row.ClockIn
		logs = append(logs, EditLog{
			ID:           uuid.New(),
			AttendanceID: row.ID,
			EditorID:     editor,
			FieldName:    FieldClockIn,
			OldValue:     &old,
			NewValue:     req.ClockIn,
		})
		row.ClockIn = *req.ClockIn
	}
	if req.ClockOut != nil && (row.ClockOut == nil || !req.ClockOut.Equal(*row.ClockOut)) {
		logs = append(logs, EditLog{
			ID:           uuid.New(),
			AttendanceID: row.ID,
			EditorID:     editor,
			FieldName:    FieldClockOut,
			OldValue:     row.ClockOut,
			NewValue:     req.ClockOut,
		})
		row.ClockOut = req.ClockOut
	}

	if len(logs) == 0 {
		return mapToResponse(*row), nil
	}

	if row.ClockOut != nil {
		windows, err := s.windows.ActiveWindows(ctx)
		if err != nil {
			return AttendanceResponse{}, err
		}
		d := computeDuration(row.ClockIn, *row.ClockOut, windows)
		row.WorkDurationMinutes = &d
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	fields := make([]string, 0, len(logs))
	for i := range logs {
		if err := s.repo.CreateEditLog(ctx, &logs[i]); err != nil {
			return AttendanceResponse{}, err
		}
		fields = append(fields, logs[i].FieldName)
	}

	s.enqueueEdited(ctx, row, editorID, fields)
	return mapToResponse(*row), nil
}

func (s *service) GetAll(ctx context.Context, actorID string, canReadAll bool) ([]AttendanceResponse, error) {
	var (
		rows []Attendance
		err  error
	)
	if canReadAll {
		rows, err = s.repo.FindAll(ctx)
	} else {
		if _, parseErr := uuid.Parse(actorID); parseErr != nil {
			return nil, apperror.New(apperror.CodeInvalidInput, "invalid actor id", http.StatusBadRequest)
		}
		rows, err = s.repo.FindAllByUser(ctx, actorID)
	}
	if err != nil {
		if connection.IsUnavailable(err) {
			return []AttendanceResponse{}, nil
		}
		return nil, err
	}
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

// AutoCloseOpenRecords force-closes every record clocked in on now's
// local day that is still open, at 23:59:59 on its clock-in date.
// Idempotency rests on the open-record filter alone: a closed record
// drops out of the scan. Failures on one record do not stop the rest.
func (s *service) AutoCloseOpenRecords(ctx context.Context, now time.Time) (int, error) {
	dayStart, dayEnd := localDayBounds(now)
	open, err := s.repo.FindOpenBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return 0, err
	}
	if len(open) == 0 {
		return 0, nil
	}

	windows, err := s.windows.ActiveWindows(ctx)
	if err != nil {
		return 0, err
	}

	log := zap.L().Named("attendance.autoclose")
	loc := now.Location()
	closed := 0
	for i := range open {
		row := &open[i]
		in := row.ClockIn.In(loc)
		end := time.Date(in.Year(), in.Month(), in.Day(), 23, 59, 59, 0, loc)

		device := DeviceAutoClose
		d := computeDuration(row.ClockIn, end, windows)
		row.ClockOut = &end
		row.ClockOutDevice = &device
		row.WorkDurationMinutes = &d

		if err := s.repo.Update(ctx, row); err != nil {
			log.Error("force close failed",
				zap.String("attendance_id", row.ID.String()),
				zap.Error(err),
			)
			continue
		}
		s.enqueueAutoClosed(ctx, row, end)
		closed++
	}
	return closed, nil
}

func (s *service) closeRecord(ctx context.Context, row *Attendance, at time.Time, device string) (AttendanceResponse, error) {
	windows, err := s.windows.ActiveWindows(ctx)
	if err != nil {
		return AttendanceResponse{}, err
	}

	d := computeDuration(row.ClockIn, at, windows)
	row.ClockOut = &at
	row.WorkDurationMinutes = &d
	if device != "" {
		row.ClockOutDevice = &device
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*row), nil
}

// rejectSameDayClockIn is the check half of a check-then-act pair; the
// partial unique index on open records backstops the race between the
// check and the insert.
func (s *service) rejectSameDayClockIn(ctx context.Context, userID string, at time.Time) error {
	dayStart, dayEnd := localDayBounds(at)
	rows, err := s.repo.FindByUserBetween(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return attendanceerrors.ErrDuplicateClockIn
	}
	return nil
}

func (s *service) enqueueAutoClosed(ctx context.Context, row *Attendance, closedAt time.Time) {
	if s.outbox == nil {
		return
	}
	payload, _ := json.Marshal(events.AttendanceAutoClosedEvent{
		EventType:           "attendance.auto_closed",
		AttendanceID:        row.ID.String(),
		UserID:              row.UserID.String(),
		ClockOut:            closedAt,
		WorkDurationMinutes: *row.WorkDurationMinutes,
		OccurredAt:          time.Now().UTC(),
	})
	s.enqueue(ctx, row.ID.String(), "attendance.auto_closed", payload)
}

func (s *service) enqueueEdited(ctx context.Context, row *Attendance, editorID string, fields []string) {
	if s.outbox == nil {
		return
	}
	payload, _ := json.Marshal(events.AttendanceEditedEvent{
		EventType:    "attendance.edited",
		AttendanceID: row.ID.String(),
		EditorID:     editorID,
		Fields:       fields,
		OccurredAt:   time.Now().UTC(),
	})
	s.enqueue(ctx, row.ID.String(), "attendance.edited", payload)
}

// enqueue is best effort: a full outbox never fails the user-facing
// operation.
func (s *service) enqueue(ctx context.Context, aggregateID, eventType string, payload []byte) {
	err := s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: "attendance",
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         events.AttendanceLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
	if err != nil {
		zap.L().Named("attendance").Warn("enqueue outbox event failed",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// computeDuration is the single duration formula: floored elapsed
// minutes net of break overlap, floored at zero.
func computeDuration(clockIn, clockOut time.Time, windows []breakwindow.BreakWindow) int {
	elapsed := int(clockOut.Sub(clockIn) / time.Minute)
	if d := elapsed - breakwindow.OverlapMinutes(clockIn, clockOut, windows); d > 0 {
		return d
	}
	return 0
}

func localDayBounds(t time.Time) (time.Time, time.Time) {
	loc := t.Location()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:                  a.ID.String(),
		UserID:              a.UserID.String(),
		ClockIn:             a.ClockIn.Format(time.RFC3339),
		WorkDurationMinutes: a.WorkDurationMinutes,
		ClockInDevice:       a.ClockInDevice,
		ClockOutDevice:      a.ClockOutDevice,
	}
	if a.ClockOut != nil {
		v := a.ClockOut.Format(time.RFC3339)
		resp.ClockOut = &v
	}
	return resp
}
