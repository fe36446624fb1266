// Package kst buckets time into Korea Standard Time calendar days. The
// recommendation core never computes day keys itself; orchestration code
// derives them here and passes them down as opaque strings.
package kst

import "time"

// Zone is Korea Standard Time, a fixed UTC+9 offset with no DST.
var Zone = time.FixedZone("KST", 9*60*60)

const dayFormat = "2006-01-02"

// Clock produces KST day keys. The now func is injectable for tests.
type Clock struct {
	now func() time.Time
}

// NewClock returns a Clock backed by the wall clock.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockAt returns a Clock frozen to the given instant.
func NewClockAt(t time.Time) *Clock {
	return &Clock{now: func() time.Time { return t }}
}

// Day returns the KST calendar day offset days before today as YYYY-MM-DD.
// Day(0) is today, Day(1) is yesterday.
func (c *Clock) Day(offset int) string {
	return c.now().In(Zone).AddDate(0, 0, -offset).Format(dayFormat)
}

// Days returns day keys for the window [from, from+count), oldest last.
// Days(0, 3) covers today, yesterday and the day before.
func (c *Clock) Days(from, count int) []string {
	days := make([]string, 0, count)
	for i := 0; i < count; i++ {
		days = append(days, c.Day(from+i))
	}
	return days
}
