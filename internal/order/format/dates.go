package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	displayDateRe = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	slashDateRe   = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	isoDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoPrefixRe   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	digitsRe      = regexp.MustCompile(`\d+`)
)

// ToDisplayDate normalizes a date to DD-MM-YYYY. A valid date already in that
// form is returned unchanged. Otherwise the first three numeric groups are read:
// a leading four-digit group is a year (YYYY-MM-DD), else the third group is
// the year, with two-digit years below 50 in the 2000s. Day and month are
// told apart by range. Unparseable input yields "".
func ToDisplayDate(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	if displayDateRe.MatchString(s) && validDay(atoi(s[:2])) && validMonth(atoi(s[3:5])) {
		return s
	}

	groups := digitsRe.FindAllString(s, -1)
	if len(groups) < 3 {
		return ""
	}

	var a, b, year int
	if len(groups[0]) == 4 {
		year = atoi(groups[0])
		// YYYY-MM-DD: a is the day-candidate
		a, b = atoi(groups[2]), atoi(groups[1])
	} else {
		a, b = atoi(groups[0]), atoi(groups[1])
		switch len(groups[2]) {
		case 2:
			short := atoi(groups[2])
			if short < 50 {
				year = 2000 + short
			} else {
				year = 1900 + short
			}
		case 4:
			year = atoi(groups[2])
		default:
			return ""
		}
	}

	var day, month int
	switch {
	case validDay(a) && validMonth(b):
		day, month = a, b
	case validMonth(a) && validDay(b):
		day, month = b, a
	default:
		return ""
	}
	return fmt.Sprintf("%02d-%02d-%04d", day, month, year)
}

// ToStorageDate converts DD-MM-YYYY or DD/MM/YYYY to YYYY-MM-DD. A value
// already in YYYY-MM-DD is returned unchanged. ok is false for anything else.
func ToStorageDate(input string) (string, bool) {
	s := strings.TrimSpace(input)
	switch {
	case displayDateRe.MatchString(s):
		p := strings.Split(s, "-")
		return p[2] + "-" + p[1] + "-" + p[0], true
	case slashDateRe.MatchString(s):
		p := strings.Split(s, "/")
		return p[2] + "-" + p[1] + "-" + p[0], true
	case isoDateRe.MatchString(s):
		return s, true
	default:
		return "", false
	}
}

// IsFutureOrToday reports whether input names today or a later calendar
// date, with the time of day ignored. Unparseable input is false.
func IsFutureOrToday(input string, now time.Time) bool {
	display := ToDisplayDate(input)
	if display == "" {
		return false
	}
	date, err := time.ParseInLocation("02-01-2006", display, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !date.Before(today)
}

// FromOracleTimestamp turns an ISO-8601 timestamp or a bare YYYY-MM-DD into
// DD-MM-YYYY. Other input is returned unchanged.
func FromOracleTimestamp(input string) string {
	if input == "" {
		return ""
	}
	m := isoPrefixRe.FindStringSubmatch(input)
	if m == nil {
		return input
	}
	return m[3] + "-" + m[2] + "-" + m[1]
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return v
}

func validDay(v int) bool   { return v >= 1 && v <= 31 }
func validMonth(v int) bool { return v >= 1 && v <= 12 }
