package utils

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

var relMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "刚刚", DivBy: 1},
	{D: time.Hour, Format: "%d分钟前", DivBy: time.Minute},
	{D: day, Format: "%d小时前", DivBy: time.Hour},
	{D: week, Format: "%d天前", DivBy: day},
}

// RelativeTime renders how long ago t was, in Chinese. Anything a week or
// older, or in the future, is shown as a plain date.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)
	if diff < 0 || diff >= week {
		return t.In(time.Local).Format("2006/1/2")
	}
	if diff < time.Minute {
		return "刚刚"
	}
	return humanize.CustomRelTime(t, now, "", "", relMagnitudes)
}

// FormatCount renders a count with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatDate renders the local calendar date of t, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format("2006/1/2")
}

// CeilSeconds rounds a duration up to whole seconds.
func CeilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
