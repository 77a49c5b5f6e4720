package activity

import (
	"fmt"
	"time"
)

// FormatTime renders the clock part of an alarm time, or "--:--" when it
// cannot be parsed.
func FormatTime(value string) string {
	t, err := ParseAlarmTime(value)
	if err != nil {
		return "--:--"
	}

	return t.Local().Format("15:04")
}

// FormatDuration renders whole minutes as "1h", "45m" or "1h 30m".
func FormatDuration(minutes int) string {
	hours, rest := minutes/60, minutes%60

	switch {
	case rest == 0:
		return fmt.Sprintf("%dh", hours)
	case hours == 0:
		return fmt.Sprintf("%dm", rest)
	default:
		return fmt.Sprintf("%dh %dm", hours, rest)
	}
}

// FormatRemaining renders the time left until t, rounded to seconds.
func FormatRemaining(now, t time.Time) string {
	d := t.Sub(now).Round(time.Second)
	if d < 0 {
		return "due"
	}

	return d.String()
}
