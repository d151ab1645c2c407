package config

import (
	_ "embed"
	"sort"
	"strings"

	"github.com/szaffarano/gotask/internal/errs"
	"gopkg.in/yaml.v3"
)

// defaultCatalog is the built-in seed for the Entities registry (spec §3):
// command names, attribute names, the operator table and pseudo-attributes.
// It is authored as YAML and overlaid by the user's rc file, never replaced
// by it, the same relationship gotas/pkg/config.go has between its zero
// value and the loaded file.
//
//go:embed entities.yaml
var defaultCatalog []byte

// catalog is the parsed shape of entities.yaml.
type catalog struct {
	Cmd      []string `yaml:"cmd"`
	ReadCmd  []string `yaml:"readcmd"`
	WriteCmd []string `yaml:"writecmd"`
	Helper   []string `yaml:"helper"`
	Attr     []string `yaml:"attribute"`
	Pseudo   []string `yaml:"pseudo"`
	Modifier []string `yaml:"modifier"`
	Operator []string `yaml:"operator"`
}

// Entities is the multimap from category -> canonical names described in
// spec §3 "Entities registry", with prefix-completion canonicalization
// (spec §4.A) and UDAs added at runtime from the rc file's `uda.*` keys.
type Entities struct {
	categories map[string][]string
}

const (
	CategoryCmd      = "cmd"
	CategoryReadCmd  = "readcmd"
	CategoryWriteCmd = "writecmd"
	CategoryHelper   = "helper"
	CategoryAttr     = "attribute"
	CategoryUDA      = "uda"
	CategoryPseudo   = "pseudo"
	CategoryModifier = "modifier"
	CategoryOperator = "operator"
)

// NewEntities parses the embedded default catalog into a fresh registry.
func NewEntities() (*Entities, error) {
	var c catalog
	if err := yaml.Unmarshal(defaultCatalog, &c); err != nil {
		return nil, errs.StoreError(err, "parsing embedded entity catalog")
	}
	e := &Entities{categories: map[string][]string{}}
	e.addAll(CategoryCmd, c.Cmd)
	e.addAll(CategoryReadCmd, c.ReadCmd)
	e.addAll(CategoryWriteCmd, c.WriteCmd)
	e.addAll(CategoryHelper, c.Helper)
	e.addAll(CategoryAttr, c.Attr)
	e.addAll(CategoryPseudo, c.Pseudo)
	e.addAll(CategoryModifier, c.Modifier)
	e.addAll(CategoryOperator, c.Operator)
	return e, nil
}

func (e *Entities) addAll(category string, names []string) {
	for _, n := range names {
		e.Add(category, n)
	}
}

// Add registers a canonical name in a category (idempotent), used both by
// NewEntities and by the rc-file loader for `uda.<name>.*` declarations.
func (e *Entities) Add(category, name string) {
	for _, existing := range e.categories[category] {
		if existing == name {
			return
		}
	}
	e.categories[category] = append(e.categories[category], name)
}

// Names returns the sorted canonical names registered in a category.
func (e *Entities) Names(category string) []string {
	out := append([]string(nil), e.categories[category]...)
	sort.Strings(out)
	return out
}

// Canonicalize resolves prefix to the unique canonical name in category
// matching it case-insensitively, per spec §4.A "Canonicalization": an
// exact match always wins outright; otherwise a prefix of length >= 3
// must match exactly one candidate. Several candidates are an
// AmbiguityError; none (or a shorter prefix) is a ParseError.
func (e *Entities) Canonicalize(category, prefix string) (string, error) {
	lowered := strings.ToLower(prefix)

	for _, name := range e.categories[category] {
		if strings.ToLower(name) == lowered {
			return name, nil
		}
	}

	if len(prefix) < 3 {
		return "", errs.ParseError(prefix, nil, "unrecognized %s", category)
	}

	var matches []string
	for _, name := range e.categories[category] {
		if strings.HasPrefix(strings.ToLower(name), lowered) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", errs.ParseError(prefix, nil, "unrecognized %s", category)
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", errs.AmbiguityError(prefix, matches, category)
	}
}

// IsReadCommand reports whether name is a registered read-only command.
func (e *Entities) IsReadCommand(name string) bool { return contains(e.categories[CategoryReadCmd], name) }

// IsWriteCommand reports whether name is a registered write command.
func (e *Entities) IsWriteCommand(name string) bool {
	return contains(e.categories[CategoryWriteCmd], name)
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}
