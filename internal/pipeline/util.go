package pipeline

import (
	"github.com/google/shlex"
	"github.com/szaffarano/gotask/internal/errs"
)

// shlexSplit splits s the way a shell would, so a quoted token spanning a
// space ('buy milk') survives splicing into the pipeline the same way it
// would have survived argv splitting.
func shlexSplit(s string) ([]string, error) {
	toks, err := shlex.Split(s)
	if err != nil {
		return nil, errs.ParseError(s, err, "splitting command string")
	}
	return toks, nil
}
