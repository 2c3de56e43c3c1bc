package services

import (
	"fmt"
	"time"
)

// GenerateDateCode returns the shared verification code for t's calendar day
// in UTC+8: "15", the two-digit year, the month and the day of month plus
// one. The day is not wrapped at month end, so the 31st yields "32".
func GenerateDateCode(t time.Time) string {
	d := t.In(dayZone)
	return fmt.Sprintf("15%02d%02d%02d", d.Year()%100, int(d.Month()), d.Day()+1)
}
