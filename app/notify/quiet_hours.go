package notify

import (
	"time"

	"github.com/lysyi3m/news-watch/app/watch"
)

// InQuietHours reports whether now falls in [quietFrom, quietTo) on the local
// clock. A window whose start is after its end wraps midnight. An equal start
// and end, or an unparsable bound, never suppresses.
func InQuietHours(settings watch.Settings, now time.Time) bool {
	if !settings.QuietHoursEnabled {
		return false
	}

	from, ok := minuteOfDay(settings.QuietFrom)
	if !ok {
		return false
	}
	to, ok := minuteOfDay(settings.QuietTo)
	if !ok {
		return false
	}

	local := now.Local()
	current := local.Hour()*60 + local.Minute()

	switch {
	case from < to:
		return current >= from && current < to
	case from > to:
		return current >= from || current < to
	default:
		return false
	}
}

func minuteOfDay(value string) (int, bool) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
