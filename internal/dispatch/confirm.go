package dispatch

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/szaffarano/gotask/internal/errs"
)

// Answer is one of the four key bindings from spec §6 "Key bindings for
// interactive prompts": y|yes, n|no, a|all, q|quit, matched
// case-insensitively by prefix.
type Answer int

const (
	AnswerNo Answer = iota
	AnswerYes
	AnswerAll
	AnswerQuit
)

// Confirmer asks the user a yes/no or four-way question. The default
// implementation reads from a terminal; tests supply a scripted Confirmer.
type Confirmer interface {
	Ask(prompt string) (bool, error)
	AskBulk(prompt string) (Answer, error)
}

// StdioConfirmer prompts over the given reader/writer, the same
// bufio.NewReader(os.Stdin)-backed prompt loop
// theRebelliousNerd/internal/init/interactive.go uses for its own
// accept/reject prompts, generalized to the y/n/a/q bindings spec §6 names.
type StdioConfirmer struct {
	In  *bufio.Reader
	Out io.Writer
}

// NewStdioConfirmer wraps r/w into a StdioConfirmer, buffering r the way
// DefaultInteractiveConfig wraps os.Stdin.
func NewStdioConfirmer(r io.Reader, w io.Writer) *StdioConfirmer {
	return &StdioConfirmer{In: bufio.NewReader(r), Out: w}
}

func (c *StdioConfirmer) Ask(prompt string) (bool, error) {
	for {
		fmt.Fprintf(c.Out, "%s [y/n] ", prompt)
		line, err := c.readLine()
		if err != nil {
			return false, err
		}
		switch matchAnswer(line) {
		case AnswerYes:
			return true, nil
		case AnswerNo:
			return false, nil
		}
	}
}

func (c *StdioConfirmer) AskBulk(prompt string) (Answer, error) {
	for {
		fmt.Fprintf(c.Out, "%s [y/n/a/q] ", prompt)
		line, err := c.readLine()
		if err != nil {
			return AnswerNo, err
		}
		if a, ok := tryMatchAnswer(line); ok {
			return a, nil
		}
	}
}

func (c *StdioConfirmer) readLine() (string, error) {
	line, err := c.In.ReadString('\n')
	if err != nil && line == "" {
		return "", errs.StoreError(err, "reading confirmation prompt")
	}
	return strings.TrimSpace(line), nil
}

// matchAnswer matches y/yes or n/no only, for the plain Ask prompt; any
// other input is treated as unrecognized (the caller loops).
func matchAnswer(s string) Answer {
	switch {
	case isPrefixMatch(s, "yes"):
		return AnswerYes
	case isPrefixMatch(s, "no"):
		return AnswerNo
	default:
		return -1
	}
}

func tryMatchAnswer(s string) (Answer, bool) {
	switch {
	case isPrefixMatch(s, "yes"):
		return AnswerYes, true
	case isPrefixMatch(s, "no"):
		return AnswerNo, true
	case isPrefixMatch(s, "all"):
		return AnswerAll, true
	case isPrefixMatch(s, "quit"):
		return AnswerQuit, true
	default:
		return AnswerNo, false
	}
}

// isPrefixMatch reports whether s is a non-empty, case-insensitive prefix
// of word (so both the single letter and the full word match).
func isPrefixMatch(s, word string) bool {
	if s == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(word), strings.ToLower(s))
}
