// Package validate provides the appointment date parser.
package validate

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/formflow/FormFlow/internal/models"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// MsgInvalidDate is the fixed user-facing message for unparseable dates.
const MsgInvalidDate = "Could not understand the date. Try formats like 'next Monday' or '2024-06-15'."

// DateLayout is the normalized appointment date format.
const DateLayout = "2006-01-02"

var (
	nextWeekdayRe = regexp.MustCompile(`(?i)^\s*next\s+([a-z]+)\s*$`)
	ordinalDayRe  = regexp.MustCompile(`(?i)^\s*(?:the\s+)?([0-9]{1,2})(?:st|nd|rd|th)?\s*$`)

	weekdayNames = map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}

	// monthDayLayouts cover month-and-day input with no year, which gets a
	// future-biased year assignment.
	monthDayLayouts = []string{"January 2", "Jan 2", "2 January", "2 Jan"}

	naturalParser = newNaturalParser()
)

func newNaturalParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// Date parses a desired appointment date from natural language and normalizes
// it to YYYY-MM-DD. Empty input is valid and returns "" (no date requested).
// Ambiguous inputs prefer future interpretations: a bare day-of-month already
// past this month resolves to next month, and a month-and-day already past
// this year resolves to next year.
func Date(raw string) (string, error) {
	return dateAt(raw, time.Now())
}

// dateAt is Date evaluated against an explicit reference time, for testability.
func dateAt(raw string, now time.Time) (string, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return "", nil
	}

	// "next <weekday>" is the next occurrence strictly after today; on the
	// named weekday itself it means a full week later.
	if m := nextWeekdayRe.FindStringSubmatch(input); m != nil {
		if wd, ok := weekdayNames[strings.ToLower(m[1])]; ok {
			return nextWeekday(now, wd).Format(DateLayout), nil
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Bare day-of-month, e.g. "the 5th".
	if m := ordinalDayRe.FindStringSubmatch(input); m != nil {
		if day := atoiDay(m[1]); day >= 1 && day <= 31 {
			candidate := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
			if candidate.Before(today) {
				candidate = candidate.AddDate(0, 1, 0)
			}
			return candidate.Format(DateLayout), nil
		}
	}

	// Month and day with no year, e.g. "June 5".
	for _, layout := range monthDayLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			candidate := time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
			if candidate.Before(today) {
				candidate = candidate.AddDate(1, 0, 0)
			}
			return candidate.Format(DateLayout), nil
		}
	}

	// Fully specified dates in any common layout are taken as-is.
	if t, err := dateparse.ParseIn(input, now.Location()); err == nil {
		return t.Format(DateLayout), nil
	}

	// Relative and casual expressions: "tomorrow", "this friday", "in 3 days".
	if r, err := naturalParser.Parse(input, now); err == nil && r != nil {
		return r.Time.Format(DateLayout), nil
	}

	slog.Debug("Date validation could not parse input", "input", input)
	return "", &models.ValidationError{Field: models.FieldAppointmentDate, Message: MsgInvalidDate}
}

// nextWeekday returns the next occurrence of wd strictly after now's date.
func nextWeekday(now time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days)
}

func atoiDay(s string) int {
	day := 0
	for _, c := range s {
		day = day*10 + int(c-'0')
	}
	return day
}
