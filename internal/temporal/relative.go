package temporal

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// relativeNames lists the case-insensitive, minimum-3-char-prefix-matched
// names recognized as relative/anchored dates, in the order the original
// taskwarrior implementation (Date.cpp) tries them.
var relativeNames = []string{
	"now", "today", "tomorrow", "yesterday",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"sow", "soww", "socw", "eow", "eoww", "eocw",
	"som", "eom",
	"soq", "eoq",
	"soy", "eoy",
	"goodfriday", "easter", "eastermonday", "ascension", "pentecost",
	"midsommar", "midsommarafton",
	"later", "someday",
}

// matchRelativeName canonicalizes a user token against relativeNames
// using case-insensitive prefix matching, minimum length 3, same rule as
// entity canonicalization elsewhere in the pipeline.
func matchRelativeName(token string) (string, bool) {
	token = strings.ToLower(token)
	if len(token) < 3 {
		return "", false
	}
	var found string
	for _, name := range relativeNames {
		if name == token {
			return name, true
		}
		if strings.HasPrefix(name, token) {
			if found != "" && found != name {
				return "", false // ambiguous: let the caller fall through
			}
			found = name
		}
	}
	if found == "" {
		return "", false
	}
	return found, true
}

func parseRelative(s string, now Date, cfg Config) (Date, bool, error) {
	name, ok := matchRelativeName(s)
	if !ok {
		return Date{}, false, nil
	}

	nowT := now.Time()
	y, m, d := nowT.Date()

	switch name {
	case "now":
		return now, true, nil
	case "today":
		return startOfDay(y, m, d), true, nil
	case "tomorrow":
		t := nowT.AddDate(0, 0, 1)
		return startOfDay(t.Year(), t.Month(), t.Day()), true, nil
	case "yesterday":
		t := nowT.AddDate(0, 0, -1)
		return startOfDay(t.Year(), t.Month(), t.Day()), true, nil

	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return nextWeekday(nowT, name), true, nil

	case "sow":
		return startOfWeek(nowT, Monday), true, nil
	case "soww":
		return startOfWeek(nowT, Sunday), true, nil
	case "socw":
		return startOfWeek(nowT, cfg.WeekStart), true, nil
	case "eow":
		return startOfWeek(nowT, Monday).Add(7 * 86400).Add(-1), true, nil
	case "eoww":
		return startOfWeek(nowT, Sunday).Add(7 * 86400).Add(-1), true, nil
	case "eocw":
		return startOfWeek(nowT, cfg.WeekStart).Add(7 * 86400).Add(-1), true, nil

	case "som":
		return startOfDay(y, m, 1), true, nil
	case "eom":
		last := daysInMonth(int(m), y)
		return startOfDay(y, m, last), true, nil

	case "soq":
		qm := quarterStartMonth(int(m))
		return startOfDay(y, time.Month(qm), 1), true, nil
	case "eoq":
		qm := quarterStartMonth(int(m)) + 2
		return startOfDay(y, time.Month(qm), daysInMonth(qm, y)), true, nil

	case "soy":
		return startOfDay(y, 1, 1), true, nil
	case "eoy":
		return startOfDay(y, 12, 31), true, nil

	case "goodfriday", "easter", "eastermonday", "ascension", "pentecost":
		offset := map[string]int{"goodfriday": -2, "easter": 0, "eastermonday": 1, "ascension": 39, "pentecost": 49}[name]
		e := time.Unix(Easter(y), 0).UTC()
		return startOfDay(e.Year(), e.Month(), e.Day()+offset), true, nil

	case "midsommar":
		return midsommar(y, 20, 26, time.Saturday), true, nil
	case "midsommarafton":
		return midsommar(y, 19, 25, time.Friday), true, nil

	case "later", "someday":
		return newLocal(2038, 1, 18, 0, 0, 0), true, nil
	}

	return Date{}, false, nil
}

func startOfDay(y int, m time.Month, d int) Date {
	return newLocal(y, int(m), d, 0, 0, 0)
}

func nextWeekday(now time.Time, name string) Date {
	target := map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday,
		"friday": time.Friday, "saturday": time.Saturday,
	}[name]

	delta := (int(target) - int(now.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7 // strictly after today
	}
	t := now.AddDate(0, 0, delta)
	return startOfDay(t.Year(), t.Month(), t.Day())
}

// startOfWeek returns the 00:00 instant of the first day of the week
// containing `now`, per the given week-start convention.
func startOfWeek(now time.Time, ws WeekStart) Date {
	wd := int(now.Weekday()) // 0=Sunday
	var delta int
	if ws == Monday {
		iso := wd
		if iso == 0 {
			iso = 7
		}
		delta = iso - 1
	} else {
		delta = wd
	}
	t := now.AddDate(0, 0, -delta)
	return startOfDay(t.Year(), t.Month(), t.Day())
}

func quarterStartMonth(m int) int {
	switch {
	case m <= 3:
		return 1
	case m <= 6:
		return 4
	case m <= 9:
		return 7
	default:
		return 10
	}
}

// midsommar scans the Swedish midsummer window [lo, hi] of June for the
// first day matching weekday `wd`, exactly the loop in the original
// Date.cpp implementation.
func midsommar(year, lo, hi int, wd time.Weekday) Date {
	for day := lo; day <= hi; day++ {
		t := time.Date(year, time.June, day, 0, 0, 0, 0, time.Local)
		if t.Weekday() == wd {
			return startOfDay(year, time.June, day)
		}
	}
	return startOfDay(year, time.June, lo)
}

// Easter computes the date of Easter Sunday for the given year (Gregorian
// Easter algorithm, a.k.a. the "Meeus/Jones/Butcher" algorithm) and
// returns it as UTC midnight epoch seconds. Reproduced from Date::easter
// in the original implementation.
func Easter(year int) int64 {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Unix()
}

// parseOrdinalDay recognizes "<N>st|nd|rd|th": the next date whose
// day-of-month is N, rolling into the following month when N has already
// passed this month.
func parseOrdinalDay(s string, now Date) (Date, bool, error) {
	lower := strings.ToLower(s)
	var suffix string
	for _, suf := range []string{"st", "nd", "rd", "th"} {
		if strings.HasSuffix(lower, suf) {
			suffix = suf
			break
		}
	}
	if suffix == "" {
		return Date{}, false, nil
	}
	numPart := lower[:len(lower)-2]
	n, err := strconv.Atoi(numPart)
	if err != nil || n < 1 || n > 31 {
		return Date{}, false, nil
	}

	nowT := now.Time()
	y, m, d := nowT.Date()

	candidateMonth := int(m)
	candidateYear := y
	if n <= d {
		candidateMonth++
		if candidateMonth > 12 {
			candidateMonth = 1
			candidateYear++
		}
	}
	if n > daysInMonth(candidateMonth, candidateYear) {
		return Date{}, true, errors.Errorf("day %d does not exist in month %d/%d", n, candidateMonth, candidateYear)
	}
	return startOfDay(candidateYear, time.Month(candidateMonth), n), true, nil
}

// SameDay/Week/Month/Year/Hour compare the respective calendar
// components in the caller's local zone, except for UTC-flagged dates.
func SameDay(a, b Date) bool {
	ta, tb := a.Time(), b.Time()
	ya, ma, da := ta.Date()
	yb, mb, db := tb.Date()
	return ya == yb && ma == mb && da == db
}

func SameWeek(a, b Date) bool {
	return startOfWeek(a.Time(), Monday).Equal(startOfWeek(b.Time(), Monday))
}

func SameMonth(a, b Date) bool {
	ta, tb := a.Time(), b.Time()
	ya, ma, _ := ta.Date()
	yb, mb, _ := tb.Date()
	return ya == yb && ma == mb
}

func SameYear(a, b Date) bool {
	return a.Time().Year() == b.Time().Year()
}

func SameHour(a, b Date) bool {
	ta, tb := a.Time(), b.Time()
	return SameDay(a, b) && ta.Hour() == tb.Hour()
}
