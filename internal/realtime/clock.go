package realtime

import (
	"time"

	"github.com/quocvuong92/voice-assistant/internal/logging"
)

var koreanWeekdays = [...]string{
	time.Sunday:    "일요일",
	time.Monday:    "월요일",
	time.Tuesday:   "화요일",
	time.Wednesday: "수요일",
	time.Thursday:  "목요일",
	time.Friday:    "금요일",
	time.Saturday:  "토요일",
}

// KoreanWeekday returns the Korean name of d
func KoreanWeekday(d time.Weekday) string {
	return koreanWeekdays[d]
}

// Clock reports the current time in a configured timezone
type Clock struct {
	loc *time.Location // nil when the timezone could not be loaded
	now func() time.Time
}

// NewClock loads tz. When it cannot be loaded the clock falls back to
// system local time without a weekday.
func NewClock(tz string) *Clock {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logging.Component("clock").Warn("timezone unavailable, using local time", logging.Fields{
			"timezone": tz,
			"error":    err.Error(),
		})
		loc = nil
	}
	return &Clock{loc: loc, now: time.Now}
}

// Now returns the current time in the clock's zone
func (c *Clock) Now() time.Time {
	if c.loc == nil {
		return c.now()
	}
	return c.now().In(c.loc)
}

// Describe renders the current time for the prompt
func (c *Clock) Describe() string {
	now := c.Now()
	if c.loc == nil {
		return now.Format("2006-01-02 15:04:05")
	}
	return now.Format("2006년 01월 02일 15시 04분") + " (" + KoreanWeekday(now.Weekday()) + ")"
}

// Lookup implements the time provider. It never fails.
func (c *Clock) Lookup() Result {
	return Result{
		Provider:  "time",
		Status:    StatusOK,
		Fragments: []Fragment{"현재 시간: " + c.Describe()},
	}
}
