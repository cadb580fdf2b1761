package events

import "time"

const AttendanceLifecycleTopic = "workshop.attendance.lifecycle.v1"

type AttendanceAutoClosedEvent struct {
	EventType           string    `json:"event_type"`
	AttendanceID        string    `json:"attendance_id"`
	UserID              string    `json:"user_id"`
	ClockOut            time.Time `json:"clock_out"`
	WorkDurationMinutes int       `json:"work_duration_minutes"`
	OccurredAt          time.Time `json:"occurred_at"`
}

type AttendanceEditedEvent struct {
	EventType    string    `json:"event_type"`
	AttendanceID string    `json:"attendance_id"`
	EditorID     string    `json:"editor_id"`
	Fields       []string  `json:"fields"`
	OccurredAt   time.Time `json:"occurred_at"`
}
