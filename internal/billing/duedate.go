package billing

import (
	"math"
	"time"
)

// chequeDueAlertDays: an alert fires when a cheque's due date is exactly this
// many days away. It is an exact match, not a threshold.
const chequeDueAlertDays = 2

// DaysUntil returns the midnight-to-midnight day count from now to the given
// ISO date. The bool is false when the date is not a well-formed YYYY-MM-DD.
func DaysUntil(dateText string, now time.Time) (int, bool) {
	if !chequeDatePattern.MatchString(dateText) {
		return 0, false
	}
	target, err := time.ParseInLocation("2006-01-02", dateText, now.Location())
	if err != nil {
		return 0, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	diff := target.Sub(today)
	return int(math.Round(diff.Hours() / 24)), true
}

// ChequeDueSoon filters dates to those due in exactly two days.
func ChequeDueSoon(dates []string, now time.Time) []string {
	due := make([]string, 0, len(dates))
	for _, date := range dates {
		if days, ok := DaysUntil(date, now); ok && days == chequeDueAlertDays {
			due = append(due, date)
		}
	}
	return due
}
