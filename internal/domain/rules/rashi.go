package rules

import "time"

type rashiStart struct {
	month time.Month
	day   int
	name  string
}

// Sidereal sun-sign boundaries, ordered by calendar date. A date before the
// first entry belongs to the last sign of the previous year (dhanu).
var rashiStarts = []rashiStart{
	{time.January, 14, "makara"},
	{time.February, 13, "kumbha"},
	{time.March, 14, "meena"},
	{time.April, 14, "mesha"},
	{time.May, 15, "vrishabha"},
	{time.June, 15, "mithuna"},
	{time.July, 16, "karka"},
	{time.August, 17, "simha"},
	{time.September, 17, "kanya"},
	{time.October, 17, "tula"},
	{time.November, 16, "vrishchika"},
	{time.December, 16, "dhanu"},
}

// RashiFromBirthdate returns the sidereal sun sign shown on a kundli report.
// The zero time has no sign.
func RashiFromBirthdate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	d = d.UTC()

	sign := rashiStarts[len(rashiStarts)-1].name
	for _, s := range rashiStarts {
		if d.Month() < s.month || (d.Month() == s.month && d.Day() < s.day) {
			break
		}
		sign = s.name
	}
	return sign
}
