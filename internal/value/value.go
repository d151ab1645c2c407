// Package value implements the tagged-variant Value type used by the
// expression engine: a small sum type over bool, int, real, string,
// date and duration, with the coercion lattice described by the engine's
// operator semantics.
//
// The cast/coercion rules were taken from the original taskwarrior
// implementation, Variant.cpp, operator+/-/*  and Variant::cast.
package value

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies which alternative of the tagged union is active. The
// numeric order is the promotion order of the coercion lattice:
// bool < int < real < string < duration < date.
type Kind int

const (
	Bool Kind = iota
	Int
	Real
	String
	Duration
	Date
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Real:
		return "real"
	case String:
		return "string"
	case Duration:
		return "duration"
	case Date:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a tagged union carrying exactly one live representation plus
// the raw literal it was parsed from, if any. The raw form lets
// attribute-conditioned matching (priorities, project prefixes) inspect
// the original textual convention.
type Value struct {
	kind Kind
	b    bool
	i    int64
	r    float64
	s    string
	// epoch seconds for Date, signed seconds for Duration
	n int64
	// dateUTC records whether a Date value was derived from a UTC literal;
	// relative names are always local.
	dateUTC bool
	raw     string
	hasRaw  bool
}

func NewBool(b bool) Value   { return Value{kind: Bool, b: b} }
func NewInt(i int64) Value   { return Value{kind: Int, i: i} }
func NewReal(r float64) Value { return Value{kind: Real, r: r} }

func NewString(s string) Value {
	return Value{kind: String, s: s, raw: s, hasRaw: true}
}

func NewDate(epoch int64, utc bool) Value {
	return Value{kind: Date, n: epoch, dateUTC: utc}
}

func NewDuration(seconds int64) Value {
	return Value{kind: Duration, n: seconds}
}

// WithRaw attaches the literal source text this value was lexed from.
func (v Value) WithRaw(raw string) Value {
	v.raw = raw
	v.hasRaw = true
	return v
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) Raw() (string, bool) { return v.raw, v.hasRaw }

func (v Value) IsDateUTC() bool { return v.dateUTC }

// AsBool implements the "truthiness" coercion used when a filter's final
// value is reduced to a boolean.
func (v Value) AsBool() bool {
	switch v.kind {
	case Bool:
		return v.b
	case Int:
		return v.i != 0
	case Real:
		return v.r != 0
	case String:
		return v.s != ""
	case Duration, Date:
		return v.n != 0
	}
	return false
}

func (v Value) AsInt() int64 {
	switch v.kind {
	case Bool:
		if v.b {
			return 1
		}
		return 0
	case Int:
		return v.i
	case Real:
		return int64(v.r)
	case Duration, Date:
		return v.n
	case String:
		i, _ := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		return i
	}
	return 0
}

func (v Value) AsReal() float64 {
	switch v.kind {
	case Bool:
		if v.b {
			return 1
		}
		return 0
	case Int:
		return float64(v.i)
	case Real:
		return v.r
	case Duration, Date:
		return float64(v.n)
	case String:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		return f
	}
	return 0
}

func (v Value) AsString() string {
	switch v.kind {
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Real:
		return strconv.FormatFloat(v.r, 'g', -1, 64)
	case String:
		return v.s
	case Duration, Date:
		return strconv.FormatInt(v.n, 10)
	}
	return ""
}

// AsEpoch returns the epoch seconds carried by a Date or Duration value.
func (v Value) AsEpoch() int64 { return v.n }

// richer reports whether a is a "richer" type than b in the promotion
// order, so that binary operators know which side to coerce.
func richer(a, b Kind) bool { return a > b }

// CoerceTo converts v into the requested kind, following the same rules
// the original Variant::cast used (string parses as a number when the
// target is numeric). A string does not cast to a duration or a date
// here: that is an error; other kinds carry their number over as the
// second count or epoch.
func (v Value) CoerceTo(k Kind) (Value, error) {
	if v.kind == k {
		return v, nil
	}

	switch k {
	case Bool:
		return NewBool(v.AsBool()), nil
	case Int:
		return NewInt(v.AsInt()), nil
	case Real:
		return NewReal(v.AsReal()), nil
	case String:
		return NewString(v.AsString()), nil
	case Duration:
		if v.kind == String {
			return Value{}, errors.Errorf("cannot cast string %q to duration without a parser", v.s)
		}
		return NewDuration(v.AsInt()), nil
	case Date:
		if v.kind == String {
			return Value{}, errors.Errorf("cannot cast string %q to date without a parser", v.s)
		}
		return NewDate(v.AsInt(), v.dateUTC), nil
	}
	return Value{}, errors.Errorf("unknown target kind %v", k)
}

// promote implements the binary-operator coercion lattice from spec §4.V:
// promotion picks the richer type, except date±duration => date,
// date-date => duration, and string+string => concatenation (handled by
// the caller before promotion is needed).
func promote(a, b Value) (Value, Value, Kind, error) {
	if a.kind == Date && b.kind == Duration {
		return a, b, Date, nil
	}
	if a.kind == Duration && b.kind == Date {
		return a, b, Date, nil
	}
	if a.kind == Date && b.kind == Date {
		return a, b, Duration, nil
	}

	target := a.kind
	if richer(b.kind, target) {
		target = b.kind
	}

	ca, err := a.CoerceTo(target)
	if err != nil {
		return Value{}, Value{}, 0, err
	}
	cb, err := b.CoerceTo(target)
	if err != nil {
		return Value{}, Value{}, 0, err
	}
	return ca, cb, target, nil
}

// Add implements '+': numeric addition, string concatenation, and
// date+duration => date.
func (v Value) Add(other Value) (Value, error) {
	if v.kind == String && other.kind == String {
		return NewString(v.s + other.s), nil
	}

	a, b, target, err := promote(v, other)
	if err != nil {
		return Value{}, err
	}
	switch target {
	case Int:
		return NewInt(a.i + b.i), nil
	case Real:
		return NewReal(a.AsReal() + b.AsReal()), nil
	case Date:
		// a is the date side after promote, b is the duration side, or
		// vice-versa; epoch arithmetic is commutative here.
		return NewDate(a.AsEpoch()+b.AsEpoch(), a.dateUTC || b.dateUTC), nil
	case Duration:
		return NewDuration(a.AsEpoch() + b.AsEpoch()), nil
	case String:
		return NewString(a.AsString() + b.AsString()), nil
	}
	return Value{}, errors.Errorf("cannot add %v and %v", v.kind, other.kind)
}

// Sub implements '-': date-duration => date, date-date => duration,
// otherwise plain numeric subtraction.
func (v Value) Sub(other Value) (Value, error) {
	if v.kind == Date && other.kind == Date {
		return NewDuration(v.n - other.n), nil
	}
	if v.kind == Date && other.kind == Duration {
		return NewDate(v.n-other.n, v.dateUTC), nil
	}

	a, b, target, err := promote(v, other)
	if err != nil {
		return Value{}, err
	}
	switch target {
	case Int:
		return NewInt(a.i - b.i), nil
	case Real:
		return NewReal(a.AsReal() - b.AsReal()), nil
	case Duration:
		return NewDuration(a.AsEpoch() - b.AsEpoch()), nil
	}
	return Value{}, errors.Errorf("cannot subtract %v from %v", other.kind, v.kind)
}

func (v Value) Mul(other Value) (Value, error) {
	a, b, target, err := promote(v, other)
	if err != nil {
		return Value{}, err
	}
	switch target {
	case Int:
		return NewInt(a.i * b.i), nil
	case Real:
		return NewReal(a.AsReal() * b.AsReal()), nil
	}
	return Value{}, errors.Errorf("cannot multiply %v and %v", v.kind, other.kind)
}

func (v Value) Div(other Value) (Value, error) {
	a, b, target, err := promote(v, other)
	if err != nil {
		return Value{}, err
	}
	switch target {
	case Int:
		if b.i == 0 {
			return Value{}, errors.New("division by zero")
		}
		return NewInt(a.i / b.i), nil
	case Real:
		if b.AsReal() == 0 {
			return Value{}, errors.New("division by zero")
		}
		return NewReal(a.AsReal() / b.AsReal()), nil
	}
	return Value{}, errors.Errorf("cannot divide %v by %v", v.kind, other.kind)
}

func (v Value) Mod(other Value) (Value, error) {
	a, b, target, err := promote(v, other)
	if err != nil {
		return Value{}, err
	}
	switch target {
	case Int:
		if b.i == 0 {
			return Value{}, errors.New("modulo by zero")
		}
		return NewInt(a.i % b.i), nil
	case Real:
		if b.AsReal() == 0 {
			return Value{}, errors.New("modulo by zero")
		}
		return NewReal(math.Mod(a.AsReal(), b.AsReal())), nil
	}
	return Value{}, errors.Errorf("cannot modulo %v by %v", v.kind, other.kind)
}

func (v Value) Pow(other Value) (Value, error) {
	a, b, target, err := promote(v, other)
	if err != nil {
		return Value{}, err
	}
	switch target {
	case Int:
		return NewInt(int64(math.Pow(a.AsReal(), b.AsReal()))), nil
	case Real:
		return NewReal(math.Pow(a.AsReal(), b.AsReal())), nil
	}
	return Value{}, errors.Errorf("cannot exponentiate %v by %v", v.kind, other.kind)
}

func (v Value) Neg() (Value, error) {
	switch v.kind {
	case Int:
		return NewInt(-v.i), nil
	case Real:
		return NewReal(-v.r), nil
	case Duration:
		return NewDuration(-v.n), nil
	}
	return Value{}, errors.Errorf("cannot negate %v", v.kind)
}

func (v Value) Pos() (Value, error) {
	switch v.kind {
	case Int, Real, Duration:
		return v, nil
	}
	return Value{}, errors.Errorf("cannot apply unary + to %v", v.kind)
}

func (v Value) Not() (Value, error) {
	return NewBool(!v.AsBool()), nil
}

// priorityRank implements the special-cased ordering of the `priority`
// attribute: "" < L < M < H.
func priorityRank(s string) int {
	switch strings.ToUpper(s) {
	case "H":
		return 3
	case "M":
		return 2
	case "L":
		return 1
	default:
		return 0
	}
}

// Cmp compares v to other for <, <=, >, >=. attrName, when it names the
// `priority` attribute, activates the special H > M > L > "" ordering.
func Cmp(v, other Value, attrName string) (int, error) {
	if attrName == "priority" && v.kind == String && other.kind == String {
		a, b := priorityRank(v.s), priorityRank(other.s)
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	}

	a, b, target, err := promote(v, other)
	if err != nil {
		return 0, err
	}

	switch target {
	case Bool:
		switch {
		case a.b == b.b:
			return 0, nil
		case !a.b && b.b:
			return -1, nil
		default:
			return 1, nil
		}
	case Int:
		switch {
		case a.i < b.i:
			return -1, nil
		case a.i > b.i:
			return 1, nil
		default:
			return 0, nil
		}
	case Real:
		fa, fb := a.AsReal(), b.AsReal()
		switch {
		case fa < fb:
			return -1, nil
		case fa > fb:
			return 1, nil
		default:
			return 0, nil
		}
	case String:
		return strings.Compare(a.s, b.s), nil
	case Date, Duration:
		switch {
		case a.n < b.n:
			return -1, nil
		case a.n > b.n:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, errors.Errorf("cannot compare %v and %v", v.kind, other.kind)
}

// isPathLike reports whether an attribute is a hierarchical-path
// attribute for which '=' performs a leftmost-component prefix match
// rather than exact equality (spec §4.V).
func isPathLike(attrName string) bool {
	return attrName == "project" || attrName == "recur"
}

// EqPartial implements '=': exact equality, except for path-like
// attributes where the right side may be a leftmost path prefix of the
// left (e.g. project "Home" matches "Home.Garden").
func EqPartial(v, other Value, attrName string) (bool, error) {
	if isPathLike(attrName) {
		left := v.AsString()
		right := other.AsString()
		if right == "" {
			return left == "", nil
		}
		if left == right {
			return true, nil
		}
		return strings.HasPrefix(left, right+"."), nil
	}
	return EqExact(v, other, attrName)
}

// EqExact implements '==': always exact, with the priority ordering
// special-cased for equality too (so H == H, "" == "").
func EqExact(v, other Value, attrName string) (bool, error) {
	c, err := Cmp(v, other, attrName)
	if err != nil {
		// incomparable kinds are simply unequal, not an engine error, for ==.
		return false, nil
	}
	return c == 0, nil
}

// MatchRegex implements '~'/'!~': regex match when other was lexed from a
// /pattern/ token (signalled by otherIsRegex), else substring containment.
// caseSensitive mirrors the configuration switch in spec §4.V.
func MatchRegex(v, other Value, otherIsRegex, caseSensitive bool) (bool, error) {
	haystack := v.AsString()
	needle := other.AsString()

	if !caseSensitive {
		haystack = strings.ToLower(haystack)
		needle = strings.ToLower(needle)
	}

	if !otherIsRegex {
		return strings.Contains(haystack, needle), nil
	}

	pattern := needle
	if !caseSensitive {
		pattern = "(?i)" + needle
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, errors.Wrapf(err, "invalid regex %q", needle)
	}
	return re.MatchString(v.AsString()), nil
}

func (v Value) String() string {
	return fmt.Sprintf("%s(%s)", v.kind, v.AsString())
}
