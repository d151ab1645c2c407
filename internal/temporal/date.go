// Package temporal implements the named-date and ISO-8601-duration model
// described by the engine's temporal component: absolute date parsing,
// relative/anchored names (eom, sow, easter, ordinals...), and duration
// parsing with both canonical and colloquial forms.
//
// The relative-name table and the Easter algorithm were taken from the
// original taskwarrior implementation, Date.cpp (informalName handling
// and Date::easter).
package temporal

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Date is an epoch-seconds instant that remembers whether it was derived
// from a UTC literal (ISO-8601 "Z"/offset forms) or from the local zone
// (relative names, bare ISO-8601 local forms). Comparisons always use the
// epoch; the flag exists purely so callers can render back in the zone
// the value came from.
type Date struct {
	Epoch int64
	UTC   bool
}

func FromTime(t time.Time) Date {
	return Date{Epoch: t.Unix(), UTC: t.Location() == time.UTC}
}

func (d Date) Time() time.Time {
	if d.UTC {
		return time.Unix(d.Epoch, 0).UTC()
	}
	return time.Unix(d.Epoch, 0).Local()
}

func (d Date) Add(seconds int64) Date {
	return Date{Epoch: d.Epoch + seconds, UTC: d.UTC}
}

func (d Date) Sub(other Date) int64 {
	return d.Epoch - other.Epoch
}

func (d Date) Before(other Date) bool { return d.Epoch < other.Epoch }
func (d Date) After(other Date) bool  { return d.Epoch > other.Epoch }
func (d Date) Equal(other Date) bool  { return d.Epoch == other.Epoch }

// WeekStart controls whether sow/eow ("start/end of week") follow ISO
// (Monday) or a configured alternative week start.
type WeekStart int

const (
	Monday WeekStart = iota
	Sunday
)

// Config carries the caller-configured knobs that affect date parsing:
// the application's print/parse format string and the configured week
// start, both sourced from the rc file in the real system.
type Config struct {
	// Format is composed of the placeholders Y y M m D d H h N S s a A b B V v j J.
	Format    string
	WeekStart WeekStart
}

func DefaultConfig() Config {
	return Config{Format: "Y-M-D", WeekStart: Monday}
}

// daysInMonth and leap-year rule, per spec §4.T validity rules.
func isLeap(y int) bool {
	return (y%4 == 0 && y%100 != 0) || y%400 == 0
}

func daysInMonth(m, y int) int {
	switch m {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeap(y) {
			return 29
		}
		return 28
	}
	return 0
}

// Valid reports whether a candidate (y, m, d, h, n, s) tuple is a valid
// calendar instant per spec §4.T.
func Valid(y, m, d, h, n, s int) bool {
	if m < 1 || m > 12 {
		return false
	}
	if d < 1 || d > daysInMonth(m, y) {
		return false
	}
	if h < 0 || h > 23 {
		return false
	}
	if n < 0 || n > 59 {
		return false
	}
	if s < 0 || s > 59 {
		return false
	}
	return true
}

func newUTC(y, m, d, h, n, s int) Date {
	t := time.Date(y, time.Month(m), d, h, n, s, 0, time.UTC)
	return Date{Epoch: t.Unix(), UTC: true}
}

func newLocal(y, m, d, h, n, s int) Date {
	t := time.Date(y, time.Month(m), d, h, n, s, 0, time.Local)
	return Date{Epoch: t.Unix(), UTC: false}
}

// Parse accepts absolute ISO-8601 forms, epoch literals, relative names,
// weekday names and ordinals (spec §4.T). `now` anchors relative parses.
func Parse(s string, now Date, cfg Config) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, errors.New("empty date")
	}

	if d, ok, err := parseEpochLiteral(s); ok {
		return d, err
	}
	if d, ok, err := parseISO8601(s); ok {
		return d, err
	}
	if d, ok, err := parseRelative(s, now, cfg); ok {
		return d, err
	}
	if d, ok, err := parseOrdinalDay(s, now); ok {
		return d, err
	}
	if d, ok, err := parseWithFormat(s, cfg.Format); ok {
		return d, err
	}

	return Date{}, errors.Errorf("unrecognized date %q", s)
}

// parseEpochLiteral recognizes a 9-10 digit integer as raw epoch seconds.
func parseEpochLiteral(s string) (Date, bool, error) {
	if len(s) < 9 || len(s) > 10 {
		return Date{}, false, nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Date{}, false, nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Date{}, true, err
	}
	return Date{Epoch: n, UTC: true}, true, nil
}

// parseISO8601 recognizes the basic/extended forms, ordinal-year form and
// ISO week form described in spec §4.T.
func parseISO8601(s string) (Date, bool, error) {
	layouts := []string{
		"20060102T150405Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"20060102",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			utc := strings.HasSuffix(layout, "Z") || strings.HasSuffix(layout, "Z07:00")
			if !utc {
				t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
			} else {
				t = t.UTC()
			}
			return Date{Epoch: t.Unix(), UTC: utc}, true, nil
		}
	}

	// Ordinal year form YYYY-DDD.
	if len(s) == 8 && s[4] == '-' {
		y, errY := strconv.Atoi(s[0:4])
		doy, errD := strconv.Atoi(s[5:8])
		if errY == nil && errD == nil && doy >= 1 && doy <= 366 {
			t := time.Date(y, 1, 1, 0, 0, 0, 0, time.Local).AddDate(0, 0, doy-1)
			return Date{Epoch: t.Unix(), UTC: false}, true, nil
		}
	}

	// ISO week form YYYY-Www[-d].
	if strings.Contains(s, "-W") {
		parts := strings.SplitN(s, "-W", 2)
		if len(parts) == 2 {
			y, errY := strconv.Atoi(parts[0])
			rest := parts[1]
			day := 1
			week := rest
			if idx := strings.Index(rest, "-"); idx >= 0 {
				week = rest[:idx]
				if dd, err := strconv.Atoi(rest[idx+1:]); err == nil {
					day = dd
				}
			}
			w, errW := strconv.Atoi(week)
			if errY == nil && errW == nil {
				t := isoWeekToDate(y, w, day)
				return newLocal(t.Year(), int(t.Month()), t.Day(), 0, 0, 0), true, nil
			}
		}
	}

	return Date{}, false, nil
}

func isoWeekToDate(year, week, weekday int) time.Time {
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, time.UTC)
	isoWd := int(jan4.Weekday())
	if isoWd == 0 {
		isoWd = 7
	}
	week1Monday := jan4.AddDate(0, 0, -(isoWd - 1))
	return week1Monday.AddDate(0, 0, (week-1)*7+(weekday-1))
}

// parseWithFormat parses against the application-configured print/parse
// format string, composed of the placeholders listed in spec §4.T.
func parseWithFormat(s, format string) (Date, bool, error) {
	if format == "" {
		return Date{}, false, nil
	}
	goLayout, ok := translateFormat(format)
	if !ok {
		return Date{}, false, nil
	}
	t, err := time.ParseInLocation(goLayout, s, time.Local)
	if err != nil {
		return Date{}, false, nil
	}
	return Date{Epoch: t.Unix(), UTC: false}, true, nil
}

// Format renders d using the application's configured print format.
func Format(d Date, format string) string {
	goLayout, ok := translateFormat(format)
	if !ok {
		goLayout = "2006-01-02"
	}
	return d.Time().Format(goLayout)
}

// translateFormat converts the placeholder alphabet Y y M m D d H h N S s
// a A b B V v j J into a Go reference-time layout. Two-digit vs numeric
// variants follow the case convention: uppercase is zero-padded,
// lowercase is the bare numeric form, except where noted.
func translateFormat(format string) (string, bool) {
	replacer := strings.NewReplacer(
		"YYYY", "2006", "Y", "2006",
		"yy", "06", "y", "06",
		"MMMM", "January", "MMM", "Jan", "MM", "01", "M", "01",
		"mm", "01", "m", "1",
		"DD", "02", "D", "02",
		"dd", "02", "d", "2",
		"HH", "15", "H", "15",
		"hh", "03", "h", "3",
		"N", "04",
		"SS", "05", "S", "05",
		"ss", "05", "s", "5",
		"A", "PM", "a", "pm",
		"BBBB", "Monday", "B", "Mon",
		"bbbb", "Monday", "b", "Mon",
		"V", "2006",
		"v", "06",
		"JJJ", "002", "J", "002",
		"j", "002",
	)
	out := replacer.Replace(format)
	if out == "" {
		return "", false
	}
	return out, true
}
