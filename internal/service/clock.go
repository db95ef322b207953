package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var hhmmPattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})$`)

// ParseClock normalizes flexible user time input to zero-padded HH:MM.
// Accepted: 9:05, 9.05, 09 05, 21-30, 21;30, 2130. Returns "" when the
// input is not a valid 24h time.
func ParseClock(text string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return ""
	}

	for _, sep := range []string{".", "-", " ", ";"} {
		t = strings.ReplaceAll(t, sep, ":")
	}

	// Bare 4 digits like 2130.
	if len(t) == 4 && !strings.Contains(t, ":") {
		if _, err := strconv.Atoi(t); err == nil {
			t = t[:2] + ":" + t[2:]
		}
	}

	m := hhmmPattern.FindStringSubmatch(t)
	if m == nil {
		return ""
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 0 || hour > 23 {
		return ""
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil || minute < 0 || minute > 59 {
		return ""
	}

	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// SplitClock breaks a normalized HH:MM into its parts.
func SplitClock(hhmm string) (hour, minute int, err error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", hhmm)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", hhmm)
	}
	return hour, minute, nil
}

// loadLocation resolves a user's timezone, falling back to fallback
// and then UTC rather than failing.
func loadLocation(tzName, fallback string) *time.Location {
	for _, name := range []string{strings.TrimSpace(tzName), strings.TrimSpace(fallback)} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}

// LocalToday returns today's date string (YYYY-MM-DD) in the zone.
func LocalToday(now time.Time, loc *time.Location) string {
	return now.In(loc).Format("2006-01-02")
}

// WeekStart returns the Monday of the current ISO week (YYYY-MM-DD) in
// the zone.
func WeekStart(now time.Time, loc *time.Location) string {
	day := now.In(loc)
	// Weekday runs Sunday=0; shift so Monday=0.
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return monday.Format("2006-01-02")
}

// LastNDates returns today and the n-1 preceding local dates, newest
// first.
func LastNDates(now time.Time, loc *time.Location, n int) []string {
	day := now.In(loc)
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, day.AddDate(0, 0, -i).Format("2006-01-02"))
	}
	return dates
}

// DailyCronSpec builds a seconds-granularity cron spec firing every
// day at HH:MM in the given zone.
func DailyCronSpec(hhmm, tzName string) (string, error) {
	hour, minute, err := SplitClock(hhmm)
	if err != nil {
		return "", err
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("CRON_TZ=%s 0 %d %d * * *", tzName, minute, hour), nil
}

// WeeklyCronSpec builds a cron spec firing every Sunday at HH:MM in
// the given zone.
func WeeklyCronSpec(hhmm, tzName string) (string, error) {
	hour, minute, err := SplitClock(hhmm)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CRON_TZ=%s 0 %d %d * * 0", tzName, minute, hour), nil
}
