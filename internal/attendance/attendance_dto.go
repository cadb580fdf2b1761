package attendance

import "time"

type ClockInRequest struct {
	Device string `json:"device"`
}

type AdminClockInRequest struct {
	UserID  string    `json:"user_id" binding:"required"`
	ClockIn time.Time `json:"clock_in" binding:"required"`
	Device  string    `json:"device"`
}

type AdminClockOutRequest struct {
	UserID   string    `json:"user_id" binding:"required"`
	ClockOut time.Time `json:"clock_out" binding:"required"`
}

// UpdateAttendanceRequest applies only the fields explicitly provided;
// a nil pointer leaves the stored value untouched.
type UpdateAttendanceRequest struct {
	ClockIn  *time.Time `json:"clock_in"`
	ClockOut *time.Time `json:"clock_out"`
}

type AttendanceResponse struct {
	ID                  string  `json:"id"`
	UserID              string  `json:"user_id"`
	ClockIn             string  `json:"clock_in"`
	ClockOut            *string `json:"clock_out,omitempty"`
	WorkDurationMinutes *int    `json:"work_duration_minutes,omitempty"`
	ClockInDevice       *string `json:"clock_in_device,omitempty"`
	ClockOutDevice      *string `json:"clock_out_device,omitempty"`
}
