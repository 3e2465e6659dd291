package gnss

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// BrokenDownTime converts a GPS week/time-of-week pair to the broken-down
// calendar fields "Decoded telemetry record" wants
// ("derived via the Modified-Julian-Day conversion, no leap-second
// handling"). The year and day-of-year come from the GPS-epoch Unix
// conversion already in gtime.go; month/day themselves are resolved from
// day-of-year the same way sixy6e-go-gsf/decode/params.go resolves a
// calendar date from a year+day-of-year pair, via
// julian.LeapYearGregorian + julian.DayOfYearToCalendar, rather than a
// hand-rolled month-length table.
func BrokenDownTime(week int, tow float64) (year, month, day, hour, minute int, sec float64) {
	t := GpsT2Time(week, tow)
	tm := time.Unix(t.Time, int64(t.Sec*1e9)).UTC()

	year = tm.Year()
	leap := julian.LeapYearGregorian(year)
	month, day = julian.DayOfYearToCalendar(tm.YearDay(), leap)

	hour, minute = tm.Hour(), tm.Minute()
	sec = float64(tm.Second()) + float64(tm.Nanosecond())/1e9
	return year, month, day, hour, minute, sec
}
