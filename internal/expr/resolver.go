package expr

import (
	"strconv"
	"strings"

	"github.com/szaffarano/gotask/internal/task"
	"github.com/szaffarano/gotask/internal/temporal"
	"github.com/szaffarano/gotask/internal/value"
)

// Resolver looks an identifier up to a Value; non-matching identifiers
// degrade to string literals per spec §4.E "Evaluate".
type Resolver interface {
	Resolve(name string) (value.Value, bool)
}

// ConstResolver supplies the engine's built-in constants (true/false/pi).
type ConstResolver struct{}

func (ConstResolver) Resolve(name string) (value.Value, bool) {
	switch strings.ToLower(name) {
	case "true":
		return value.NewBool(true), true
	case "false":
		return value.NewBool(false), true
	case "pi":
		return value.NewReal(3.14159265358979323846), true
	}
	return value.Value{}, false
}

// dateFields and durationFields classify Task attributes by Value kind,
// so the DOM resolver can parse them with internal/temporal instead of
// treating every attribute as a bare string.
var dateFields = map[string]bool{
	"entry": true, "start": true, "end": true, "due": true,
	"until": true, "wait": true, "scheduled": true,
}

var durationFields = map[string]bool{"recur": true}

// DOMResolver reads task attributes by dotted name, the primary variable
// source named in spec §4.E "Evaluate".
type DOMResolver struct {
	Task *task.Task
	Now  temporal.Date
}

func (d DOMResolver) Resolve(name string) (value.Value, bool) {
	if name == "tags" {
		return value.Value{}, false // tags is resolved structurally by _hastag_/_notag_, not as a scalar
	}
	if !d.Task.Has(name) {
		return value.Value{}, false
	}
	raw := d.Task.Get(name)

	switch {
	case dateFields[name]:
		if raw == "" {
			return value.Value{}, false
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return value.Value{}, false
		}
		return value.NewDate(n, true).WithRaw(raw), true
	case durationFields[name]:
		d, err := temporal.ParseDuration(raw)
		if err != nil {
			return value.NewString(raw), true
		}
		return value.NewDuration(int64(d)).WithRaw(raw), true
	case name == "priority":
		return value.NewString(raw), true
	default:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && raw != "" {
			return value.NewInt(n).WithRaw(raw), true
		}
		return value.NewString(raw), true
	}
}

// HasTag reports whether the resolver's task carries tag, for the
// _hastag_/_notag_ pseudo-binary operators.
func (d DOMResolver) HasTag(tag string) bool { return d.Task.HasTag(tag) }

// TagChecker is implemented by resolvers that can answer _hastag_/
// _notag_ queries against their underlying task.
type TagChecker interface {
	HasTag(tag string) bool
}

// Composite tries each Resolver in order, the first match wins.
type Composite []Resolver

func (c Composite) Resolve(name string) (value.Value, bool) {
	for _, r := range c {
		if v, ok := r.Resolve(name); ok {
			return v, ok
		}
	}
	return value.Value{}, false
}

func (c Composite) HasTag(tag string) bool {
	for _, r := range c {
		if tc, ok := r.(TagChecker); ok {
			return tc.HasTag(tag)
		}
	}
	return false
}
