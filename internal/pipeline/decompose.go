package pipeline

import (
	"strings"

	"github.com/szaffarano/gotask/internal/config"
)

// decomposeModifications classifies each MODIFICATION node per spec §4.A
// step 8, trying /from/to/[g], +tag/-tag, name.mod[:=]value, then
// name:value (UDA names before attribute names); anything left over is a
// bare WORD destined for the description buffer.
func (e *Engine) decomposeModifications(args []*Arg) ([]*Arg, error) {
	for _, a := range args {
		if !a.Has(Modification) {
			continue
		}
		e.decomposeOne(a)
	}
	return args, nil
}

func (e *Engine) decomposeOne(a *Arg) {
	if m := substitutionPattern.FindStringSubmatch(a.Raw); m != nil {
		a.Tag(Substitution)
		a.Set("from", m[1])
		a.Set("to", m[2])
		a.Set("global", m[3])
		return
	}

	if m := tagPattern.FindStringSubmatch(a.Raw); m != nil {
		a.Tag(Tag)
		a.Set("name", m[2])
		if m[1] == "-" {
			a.Set("sense", "-")
		} else {
			a.Set("sense", "+")
		}
		return
	}

	sep := strings.IndexAny(a.Raw, ":=")
	if sep > 0 {
		namePart, value := a.Raw[:sep], a.Raw[sep+1:]
		if m := dottedPattern.FindStringSubmatch(namePart); m != nil {
			name, mod := m[1], m[2]
			negate := strings.HasPrefix(mod, "~")
			mod = strings.TrimPrefix(mod, "~")
			if canonAttr, err := e.Entities.Canonicalize(config.CategoryAttr, name); err == nil {
				if canonMod, err := e.Entities.Canonicalize(config.CategoryModifier, mod); err == nil {
					a.Tag(AttMod)
					a.Set("name", canonAttr)
					a.Set("modifier", canonMod)
					a.Set("value", value)
					if negate {
						a.Set("sense", "-")
					}
					e.tagModifiable(a, canonAttr)
					return
				}
			}
		}

		if canon, err := e.Entities.Canonicalize(config.CategoryUDA, namePart); err == nil {
			a.Tag(Attribute)
			a.Tag(UDA)
			a.Set("name", canon)
			a.Set("value", value)
			a.Tag(Modifiable)
			return
		}
		if canon, err := e.Entities.Canonicalize(config.CategoryAttr, namePart); err == nil {
			a.Tag(Attribute)
			a.Set("name", canon)
			a.Set("value", value)
			e.tagModifiable(a, canon)
			return
		}
	}

	a.Tag(Word)
}

// modifiableAttrs are the attribute columns spec §4.D treats as directly
// settable by a bare ATTRIBUTE modification (as opposed to derived or
// immutable columns like uuid/entry).
var modifiableAttrs = map[string]bool{
	"description": true, "project": true, "priority": true,
	"due": true, "wait": true, "scheduled": true, "until": true,
	"recur": true, "start": true, "end": true, "status": true,
}

func (e *Engine) tagModifiable(a *Arg, name string) {
	if modifiableAttrs[name] || strings.HasPrefix(name, "uda.") {
		a.Tag(Modifiable)
	}
}

// injectDefaults implements step 9: with no CMD found, a lone ID/UUID
// sequence becomes the implicit `information` command; otherwise, with
// no content at all, `default.command`'s lexed expansion is inserted and
// categorize is re-run.
func (e *Engine) injectDefaults(args []*Arg) ([]*Arg, error) {
	if hasCmd(args) {
		return args, nil
	}

	if hasOnlySequence(args) {
		info := literalArg("information", Cmd, ReadCmd, Default, Assumed)
		info.Untag(Filter)
		return append(args, info), nil
	}

	if !hasAnyContent(args) && e.DefaultCommand != "" {
		toks, err := lexTokens(e.DefaultCommand)
		if err != nil {
			return nil, err
		}
		for _, tok := range toks {
			args = append(args, NewArg(tok, Default, Assumed))
		}
		return e.categorize(args), nil
	}

	return args, nil
}

func hasCmd(args []*Arg) bool {
	for _, a := range args {
		if a.Has(Cmd) {
			return true
		}
	}
	return false
}

func hasOnlySequence(args []*Arg) bool {
	found := false
	for _, a := range args {
		if a.Has(Binary) || a.Has(RC) || a.Has(ConfigCat) || a.Has(Terminator) {
			continue
		}
		if !a.Has(ID) && !a.Has(UUID) && !a.Has(Op) {
			return false
		}
		if a.Has(ID) || a.Has(UUID) {
			found = true
		}
	}
	return found
}

func hasAnyContent(args []*Arg) bool {
	for _, a := range args {
		if a.Has(Binary) || a.Has(RC) || a.Has(ConfigCat) {
			continue
		}
		return true
	}
	return false
}

func lexTokens(s string) ([]string, error) {
	toks, err := shlexSplit(s)
	if err != nil {
		return nil, err
	}
	return toks, nil
}
