package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Device tags recorded on clock events. DeviceAutoClose is synthetic,
// written only by the end-of-day close-out job.
const (
	DevicePC        = "pc"
	DeviceMobile    = "mobile"
	DeviceAutoClose = "auto-23:59"
)

// Attendance is one worked day for one user. A nil ClockOut marks the
// record as open; the partial unique index keeps at most one open
// record per user even when two clock-ins race.
type Attendance struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID              uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index;uniqueIndex:uq_attendances_open,where:clock_out IS NULL"`
	ClockIn             time.Time  `gorm:"column:clock_in;type:timestamptz;not null;index"`
	ClockOut            *time.Time `gorm:"column:clock_out;type:timestamptz"`
	WorkDurationMinutes *int       `gorm:"column:work_duration_minutes"`
	ClockInDevice       *string    `gorm:"column:clock_in_device;type:varchar(30)"`
	ClockOutDevice      *string    `gorm:"column:clock_out_device;type:varchar(30)"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (Attendance) TableName() string {
	return "attendances"
}

const (
	FieldClockIn  = "clockIn"
	FieldClockOut = "clockOut"
)

// EditLog is an immutable audit row, one per field changed by an
// authorized manual edit. Never updated or deleted.
type EditLog struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	AttendanceID uuid.UUID  `gorm:"column:attendance_id;type:uuid;not null;index"`
	EditorID     uuid.UUID  `gorm:"column:editor_id;type:uuid;not null"`
	FieldName    string     `gorm:"column:field_name;type:varchar(20);not null"`
	OldValue     *time.Time `gorm:"column:old_value;type:timestamptz"`
	NewValue     *time.Time `gorm:"column:new_value;type:timestamptz"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
}

func (EditLog) TableName() string {
	return "attendance_edit_logs"
}
