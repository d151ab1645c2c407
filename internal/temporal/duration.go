package temporal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Canonical second conversions, per spec §4.T: durations render both a
// canonical ISO-8601 form and a "vague" colloquial form; these constants
// are the fixed ratios used for both parsing and vague rendering.
const (
	Second = int64(1)
	Minute = 60 * Second
	Hour   = 60 * Minute
	Day    = 24 * Hour
	Week   = 7 * Day
	Month  = 30 * Day
	Quarter = 91 * Day
	Year   = 365 * Day
)

// Duration is a signed count of seconds, the canonical internal
// representation for every duration form the parser accepts.
type Duration int64

// unitLongNames maps each unit's canonical long name to its second value;
// the short forms are in unitShortNames below. A long name matches any
// prefix of at least 3 chars that fits exactly one entry, the same
// minimum as relative date names.
var unitLongNames = []struct {
	name    string
	seconds int64
}{
	{"seconds", Second},
	{"minutes", Minute},
	{"hours", Hour},
	{"days", Day},
	{"weeks", Week},
	{"months", Month},
	{"quarters", Quarter},
	{"years", Year},
}

var unitShortNames = map[string]int64{
	"s": Second, "min": Minute, "h": Hour, "d": Day, "w": Week, "mo": Month, "q": Quarter, "y": Year,
}

// fixedWords names whole colloquial durations that stand alone, with no
// numeric quantity.
var fixedWords = map[string]int64{
	"daily":      Day,
	"weekdays":   Day,
	"weekly":     Week,
	"biweekly":   2 * Week,
	"fortnight":  2 * Week,
	"sennight":   Week,
	"monthly":    Month,
	"bimonthly":  2 * Month,
	"quarterly":  Quarter,
	"semiannual": 6 * Month,
	"biannual":   6 * Month,
	"yearly":     Year,
	"annual":     Year,
	"biyearly":   2 * Year,
}

// ParseDuration accepts ISO-8601 PnYnMnDTnHnMnS, epoch-like integer
// seconds, and the colloquial forms described in spec §4.T.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}

	neg := false
	body := s
	if strings.HasPrefix(body, "-") {
		neg = true
		body = body[1:]
	} else if strings.HasPrefix(body, "+") {
		body = body[1:]
	}

	if strings.HasPrefix(body, "P") {
		secs, err := parseISODuration(body)
		if err != nil {
			return 0, err
		}
		if neg {
			secs = -secs
		}
		return Duration(secs), nil
	}

	if isAllDigits(body) {
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return 0, err
		}
		if neg {
			n = -n
		}
		return Duration(n), nil
	}

	if secs, ok := fixedWords[strings.ToLower(body)]; ok {
		if neg {
			secs = -secs
		}
		return Duration(secs), nil
	}

	secs, err := parseColloquial(body)
	if err != nil {
		return 0, err
	}
	if neg {
		secs = -secs
	}
	return Duration(secs), nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseISODuration parses PnYnMnDTnHnMnS, where each component is optional
// but at least one must be present.
func parseISODuration(s string) (int64, error) {
	if !strings.HasPrefix(s, "P") {
		return 0, errors.Errorf("not an ISO-8601 duration: %q", s)
	}
	s = s[1:]

	datePart, timePart := s, ""
	if idx := strings.IndexByte(s, 'T'); idx >= 0 {
		datePart, timePart = s[:idx], s[idx+1:]
	}

	var total int64
	found := false

	readComponent := func(buf string, units map[byte]int64) (string, error) {
		for len(buf) > 0 {
			i := 0
			for i < len(buf) && (buf[i] >= '0' && buf[i] <= '9' || buf[i] == '.') {
				i++
			}
			if i == 0 {
				return buf, errors.Errorf("malformed ISO-8601 duration component in %q", buf)
			}
			numStr := buf[:i]
			if i >= len(buf) {
				return buf, errors.Errorf("missing unit designator after %q", numStr)
			}
			unit := buf[i]
			perUnit, ok := units[unit]
			if !ok {
				return buf, errors.Errorf("unknown ISO-8601 duration designator %q", string(unit))
			}
			n, err := strconv.ParseFloat(numStr, 64)
			if err != nil {
				return buf, err
			}
			total += int64(n * float64(perUnit))
			found = true
			buf = buf[i+1:]
		}
		return buf, nil
	}

	if _, err := readComponent(datePart, map[byte]int64{'Y': Year, 'M': Month, 'D': Day, 'W': Week}); err != nil {
		return 0, err
	}
	if _, err := readComponent(timePart, map[byte]int64{'H': Hour, 'M': Minute, 'S': Second}); err != nil {
		return 0, err
	}

	if !found {
		return 0, errors.Errorf("empty ISO-8601 duration %q", "P"+s)
	}
	return total, nil
}

// parseColloquial parses "<number><unit>" where unit is a prefix of the
// long unit names (minimum 3 chars) or one of the fixed short forms.
func parseColloquial(s string) (int64, error) {
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	if i == 0 {
		return 0, errors.Errorf("no numeric quantity in duration %q", s)
	}
	qty, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, err
	}
	unit := strings.ToLower(strings.TrimSpace(s[i:]))
	if unit == "" {
		return 0, errors.Errorf("no unit in duration %q", s)
	}

	if per, ok := unitShortNames[unit]; ok {
		return int64(qty * float64(per)), nil
	}

	if len(unit) >= 3 {
		var found int64
		matches := 0
		for _, u := range unitLongNames {
			if strings.HasPrefix(u.name, unit) {
				found = u.seconds
				matches++
			}
		}
		if matches == 1 {
			return int64(qty * float64(found)), nil
		}
	}

	return 0, errors.Errorf("unrecognized duration unit %q", unit)
}

// String renders the canonical ISO-8601 form, P...D[T...], the way the
// original implementation's Duration::formatISO does.
func (d Duration) String() string {
	secs := int64(d)
	neg := secs < 0
	if neg {
		secs = -secs
	}

	days := secs / Day
	rem := secs % Day
	hh := rem / Hour
	rem %= Hour
	mm := rem / Minute
	ss := rem % Minute

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	if hh > 0 || mm > 0 || ss > 0 {
		b.WriteByte('T')
		if hh > 0 {
			fmt.Fprintf(&b, "%dH", hh)
		}
		if mm > 0 {
			fmt.Fprintf(&b, "%dM", mm)
		}
		if ss > 0 {
			fmt.Fprintf(&b, "%dS", ss)
		}
	}
	if days == 0 && hh == 0 && mm == 0 && ss == 0 {
		b.WriteString("T0S")
	}
	return b.String()
}

// Vague renders the colloquial approximation of the duration: Xh, Xmin,
// X.Yy, Xmo, Xw, Xd, Xs -- in the largest unit the span reaches, rounded
// to a whole count (years to one decimal place).
func (d Duration) Vague() string {
	secs := float64(d)
	neg := secs < 0
	if neg {
		secs = -secs
	}

	sign := ""
	if neg {
		sign = "-"
	}

	switch {
	case secs >= float64(Year):
		return fmt.Sprintf("%s%.1fy", sign, secs/float64(Year))
	case secs >= float64(Month):
		return fmt.Sprintf("%s%.0fmo", sign, secs/float64(Month))
	case secs >= float64(Week):
		return fmt.Sprintf("%s%.0fw", sign, secs/float64(Week))
	case secs >= float64(Day):
		return fmt.Sprintf("%s%.0fd", sign, secs/float64(Day))
	case secs >= float64(Hour):
		return fmt.Sprintf("%s%.0fh", sign, secs/float64(Hour))
	case secs >= float64(Minute):
		return fmt.Sprintf("%s%.0fmin", sign, secs/float64(Minute))
	default:
		return fmt.Sprintf("%s%.0fs", sign, secs)
	}
}

// Seconds returns the raw signed second count.
func (d Duration) Seconds() int64 { return int64(d) }
