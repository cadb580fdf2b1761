package breakwindow

import (
	"time"

	"github.com/google/uuid"
)

// BreakWindow is a recurring daily interval excluded from worked-time
// accounting. StartTime/EndTime are wall-clock "HH:MM" strings; an end
// before the start means the window crosses midnight.
type BreakWindow struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string    `gorm:"column:name;type:varchar(100);not null"`
	StartTime       string    `gorm:"column:start_time;type:varchar(5);not null"`
	EndTime         string    `gorm:"column:end_time;type:varchar(5);not null"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null;default:0"`
	IsActive        bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (BreakWindow) TableName() string {
	return "break_windows"
}
