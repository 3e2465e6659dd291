// Package gnss solves for a radiosonde's position and velocity from a set
// of satellite range/Doppler observations: Bancroft closed-form seed,
// linearized least-squares refinement, DOP gating, and the ECEF/geodetic
// and almanac bookkeeping those steps need.
package gnss

import (
	"fmt"
	"time"
)

// Gtime is a GPS-epoch timestamp split into whole seconds and a fractional
// remainder, the same time_t/sec split used throughout this package.
type Gtime struct {
	Time int64
	Sec  float64
}

const (
	secondsInWeek = 604800.0
	secondsInDay  = 86400.0
	gpsEpoch      = 315964800 // 1980/1/6 00:00:00 UTC, expressed as Unix time
)

// TimeGet returns the current time as a Gtime.
func TimeGet() Gtime {
	t := time.Now().UTC()
	var ep [6]float64
	ep[0] = float64(t.Year())
	ep[1] = float64(t.Month())
	ep[2] = float64(t.Day())
	ep[3] = float64(t.Hour())
	ep[4] = float64(t.Minute())
	ep[5] = float64(t.Second()) + float64(t.Nanosecond())/1e9
	return Epoch2Time(ep)
}

// Epoch2Time converts a {year, month, day, hour, min, sec} epoch to Gtime.
func Epoch2Time(ep [6]float64) Gtime {
	var tt Gtime
	days := (int64(ep[0])-1970)*365 + (int64(ep[0])-1969)/4 + int64(ep[2]) - 1
	for i := 1; i < int(ep[1]); i++ {
		days += int64(DaysInMonth(int(ep[0]), i))
	}
	sec := float64(days)*secondsInDay + ep[3]*3600.0 + ep[4]*60.0 + ep[5]
	tt.Time = int64(sec)
	tt.Sec = sec - float64(tt.Time)
	return tt
}

// DaysInMonth returns the number of days in year/month (1-based month).
func DaysInMonth(year, month int) int {
	switch month {
	case 2:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// Utc2GpsT shifts a UTC Gtime to the GPS time scale (no leap-second offset
// applied; almanac/ephemeris sources already carry GPS time).
func Utc2GpsT(t Gtime) Gtime {
	return Gtime{Time: t.Time + gpsEpoch, Sec: t.Sec}
}

// Time2GpsT reduces t to GPS week number and time-of-week in seconds.
func Time2GpsT(t Gtime) (week int, tow float64) {
	sec := float64(t.Time-gpsEpoch) + t.Sec
	week = int(sec / secondsInWeek)
	tow = sec - float64(week)*secondsInWeek
	return week, tow
}

// GpsT2Time reconstructs a Gtime from a GPS week number and time-of-week.
func GpsT2Time(week int, tow float64) Gtime {
	sec := float64(week)*secondsInWeek + tow
	return Gtime{Time: gpsEpoch + int64(sec), Sec: sec - float64(int64(sec))}
}

// TimeStr renders t at the given precision level (0=full ns, 1=to-second,
// 2=date only, 3=time with ns, 4=time to-second, 5=hh:mm).
func TimeStr(t Gtime, n int) string {
	if t.Time == 0 {
		return "0000/00/00 00:00:00.000000000"
	}
	tm := time.Unix(t.Time, int64(t.Sec*1e9))
	switch n {
	case 0:
		return tm.Format("2006/01/02 15:04:05.000000000")
	case 1:
		return tm.Format("2006/01/02 15:04:05")
	case 2:
		return tm.Format("2006/01/02")
	case 3:
		return tm.Format("15:04:05.000000000")
	case 4:
		return tm.Format("15:04:05")
	case 5:
		return tm.Format("15:04")
	default:
		return tm.Format("2006/01/02 15:04:05.000000000")
	}
}

// Str2Time parses a "YYYY/MM/DD hh:mm:ss[.sss]" string into a Gtime.
func Str2Time(str string) Gtime {
	var ep [6]float64
	var year, mon, day, hour, min int
	var sec float64
	fmt.Sscanf(str, "%d/%d/%d %d:%d:%f", &year, &mon, &day, &hour, &min, &sec)
	ep[0], ep[1], ep[2], ep[3], ep[4], ep[5] = float64(year), float64(mon), float64(day), float64(hour), float64(min), sec
	return Epoch2Time(ep)
}

// TimeDiff returns t1 - t2 in seconds.
func TimeDiff(t1, t2 Gtime) float64 {
	return float64(t1.Time-t2.Time) + (t1.Sec - t2.Sec)
}

// TimeAdd returns t offset by sec seconds, renormalizing the fractional part.
func TimeAdd(t Gtime, sec float64) Gtime {
	tt := Gtime{Time: t.Time, Sec: t.Sec + sec}
	if tt.Sec >= 1.0 {
		tt.Time += int64(tt.Sec)
		tt.Sec -= float64(int64(tt.Sec))
	} else if tt.Sec < 0.0 {
		tt.Time += int64(tt.Sec) - 1
		tt.Sec = 1.0 + tt.Sec - float64(int64(tt.Sec))
	}
	return tt
}
