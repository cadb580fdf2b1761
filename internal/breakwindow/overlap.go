package breakwindow

import "time"

// OverlapMinutes returns the floored minutes of intersection between the
// worked interval [clockIn, clockOut] and every active window,
// materialized on each local calendar day the interval spans. A window
// whose end falls before its start runs into the next day. Windows are
// summed independently per day; configuring windows that overlap each
// other is the admin's problem, not merged here.
func OverlapMinutes(clockIn, clockOut time.Time, windows []BreakWindow) int {
	if !clockOut.After(clockIn) || len(windows) == 0 {
		return 0
	}

	loc := clockIn.Location()
	day := startOfDay(clockIn, loc)
	lastDay := startOfDay(clockOut.In(loc), loc)

	total := 0
	for ; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		for _, w := range windows {
			if !w.IsActive {
				continue
			}
			sh, sm, ok := parseWallClock(w.StartTime)
			if !ok {
				continue
			}
			eh, em, ok := parseWallClock(w.EndTime)
			if !ok {
				continue
			}

			winStart := time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, loc)
			winEnd := time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, loc)
			if winEnd.Before(winStart) {
				winEnd = winEnd.AddDate(0, 0, 1)
			}

			from := laterOf(clockIn, winStart)
			to := earlierOf(clockOut, winEnd)
			if to.After(from) {
				total += int(to.Sub(from) / time.Minute)
			}
		}
	}
	return total
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// parseWallClock parses "HH:MM". Malformed values disable the window
// rather than poisoning the whole computation.
func parseWallClock(s string) (hour, minute int, ok bool) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, false
	}
	return parsed.Hour(), parsed.Minute(), true
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
