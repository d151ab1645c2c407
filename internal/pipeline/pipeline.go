package pipeline

import (
	"io"
	"strings"

	"github.com/szaffarano/gotask/internal/config"
	"github.com/szaffarano/gotask/internal/errs"
	"github.com/szaffarano/gotask/internal/lexer"
)

const maxAliasIterations = 10

// Engine runs the ordered passes of spec §4.A over an argv, using the
// loaded Entities registry and alias table for classification. It is the
// argument-pipeline analogue of gotas/pkg/config's package-level
// config/Get(): constructed once per invocation from config.Config.
type Engine struct {
	Entities       *config.Entities
	Aliases        map[string]string
	DefaultCommand string
}

// NewEngine builds a pipeline Engine from a loaded configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		Entities:       cfg.Entities,
		Aliases:        cfg.Aliases,
		DefaultCommand: cfg.DefaultCommand(),
	}
}

// Run executes every pass in spec §4.A order and returns the final
// argument vector, ready for the expression engine (FILTER nodes) and
// dispatcher (MODIFICATION nodes).
func (e *Engine) Run(argv []string, stdin io.Reader, stdinIsTTY bool) ([]*Arg, error) {
	args := e.capture(argv)

	if !stdinIsTTY && stdin != nil {
		var err error
		args, err = e.appendStdin(args, stdin)
		if err != nil {
			return nil, err
		}
	}

	args, err := e.expandAliases(args)
	if err != nil {
		return nil, err
	}

	args = e.applyOverrides(args)

	args = e.categorize(args)

	args, err = e.desugarFilters(args)
	if err != nil {
		return nil, err
	}

	args = e.tagOperators(args)
	args = e.insertJunctions(args)

	args, err = e.decomposeModifications(args)
	if err != nil {
		return nil, err
	}

	args, err = e.injectDefaults(args)
	if err != nil {
		return nil, err
	}

	return args, nil
}

// capture converts argv into ORIGINAL nodes per step 1: the first is
// additionally BINARY and carries a basename attribute; recognized
// program names set TW/CALENDAR tags.
func (e *Engine) capture(argv []string) []*Arg {
	args := make([]*Arg, 0, len(argv))
	for i, raw := range argv {
		a := NewArg(raw, Original)
		if i == 0 {
			a.Tag(Binary)
			base := raw
			if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
				base = base[idx+1:]
			}
			a.Set("basename", base)
			switch base {
			case "tw":
				a.Tag(TW)
			case "cal", "calendar":
				a.Tag(Calendar)
			}
		}
		args = append(args, a)
	}
	return args
}

// appendStdin reads whitespace-delimited tokens up to a "--" terminator
// and appends them as STDIN-tagged ORIGINAL nodes, per spec §6 "Standard
// input" and step 1. Splitting goes through shlex rather than a bare
// whitespace scan so a quoted token spanning a space ('buy milk') arrives
// intact, the same way it would have survived shell argv splitting.
func (e *Engine) appendStdin(args []*Arg, stdin io.Reader) ([]*Arg, error) {
	raw, err := io.ReadAll(stdin)
	if err != nil {
		return nil, errs.StoreError(err, "reading standard input")
	}
	toks, err := shlexSplit(string(raw))
	if err != nil {
		return nil, err
	}
	for _, tok := range toks {
		if tok == "--" {
			break
		}
		args = append(args, NewArg(tok, Original, Stdin))
	}
	return args, nil
}

// expandAliases repeats substitution of nodes matching an alias key with
// the alias's lexed expansion until a fixed point or the safety ceiling
// of 10 iterations (spec §4.A step 2, testable property 1).
func (e *Engine) expandAliases(args []*Arg) ([]*Arg, error) {
	for iter := 0; iter < maxAliasIterations; iter++ {
		changed := false
		out := make([]*Arg, 0, len(args))
		pastTerminator := false

		for _, a := range args {
			if a.Has(Terminator) {
				pastTerminator = true
			}
			if pastTerminator || a.Has(Binary) {
				out = append(out, a)
				continue
			}
			expansion, ok := e.Aliases[a.Raw]
			if !ok {
				out = append(out, a)
				continue
			}
			changed = true
			toks, err := lexer.All(expansion)
			if err != nil {
				return nil, errs.ParseError(a.Raw, err, "expanding alias")
			}
			for _, tok := range toks {
				out = append(out, NewArg(tok.Text, Alias, Lex))
			}
		}
		args = out
		if !changed {
			break
		}
	}
	return args, nil
}

// applyOverrides scans for rc:<path> and rc.<name>[:=]<value> forms, not
// past a terminator, per step 3.
func (e *Engine) applyOverrides(args []*Arg) []*Arg {
	pastTerminator := false
	for _, a := range args {
		if a.Has(Terminator) {
			pastTerminator = true
		}
		if pastTerminator || a.Has(Binary) {
			continue
		}
		if rest, ok := strings.CutPrefix(a.Raw, "rc:"); ok {
			a.Tag(RC)
			a.Set("file", rest)
			continue
		}
		if rest, ok := strings.CutPrefix(a.Raw, "rc."); ok {
			name, value, found := cutAssign(rest)
			if found {
				a.Tag(ConfigCat)
				a.Set("name", name)
				a.Set("value", value)
			}
		}
	}
	return args
}

// cutAssign splits on the first ':' or '=', whichever comes first.
func cutAssign(s string) (name, value string, ok bool) {
	ci := strings.IndexByte(s, ':')
	ei := strings.IndexByte(s, '=')
	idx := -1
	switch {
	case ci < 0 && ei < 0:
		return "", "", false
	case ci < 0:
		idx = ei
	case ei < 0:
		idx = ci
	case ci < ei:
		idx = ci
	default:
		idx = ei
	}
	return s[:idx], s[idx+1:], true
}

// categorize walks left to right assigning TERMINATOR/TERMINATED, CMD/
// READCMD/WRITECMD and FILTER/MODIFICATION, per step 4.
func (e *Engine) categorize(args []*Arg) []*Arg {
	var cmdFound *Arg
	terminated := false

	for _, a := range args {
		if terminated {
			a.Tag(Terminated)
			a.Tag(Word)
			continue
		}
		if a.Raw == "--" && !a.Has(Binary) {
			a.Tag(Terminator)
			terminated = true
			continue
		}
		if a.Has(RC) || a.Has(ConfigCat) || a.Has(Binary) {
			continue
		}
		if cmdFound == nil {
			if canon, err := e.Entities.Canonicalize(config.CategoryCmd, a.Raw); err == nil {
				a.Tag(Cmd)
				a.Set("canonical", canon)
				if e.Entities.IsWriteCommand(canon) {
					a.Tag(WriteCmd)
				} else {
					a.Tag(ReadCmd)
				}
				cmdFound = a
				continue
			}
		}
		if cmdFound != nil {
			if cmdFound.Has(WriteCmd) {
				a.Tag(Modification)
			} else {
				a.Tag(Filter)
			}
		} else {
			a.Tag(Filter)
		}
	}
	return args
}
