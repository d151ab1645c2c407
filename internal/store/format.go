// Package store implements the Task store abstraction from spec §6: two
// append-dominant text logs (pending, completed) plus an undo log, guarded
// by a file lock.
//
// The on-disk line format generalizes gotas/pkg/task/repo's transaction
// lines into the bracketed `name:"value"` record (Att.composeF4 in
// original_source/src/Att.cpp), one task per line.
package store

import (
	"sort"
	"strconv"
	"strings"

	"github.com/szaffarano/gotask/internal/errs"
	"github.com/szaffarano/gotask/internal/task"
)

// EncodeTask renders t as one `[name:"value" ...]` line. Tags, dependencies
// and annotations are encoded as synthetic attributes so the whole record
// round-trips through a single line.
func EncodeTask(t *task.Task) string {
	var b strings.Builder
	b.WriteByte('[')

	names := t.AttrNames()
	sort.Strings(names)
	first := true
	for _, name := range names {
		v := t.Get(name)
		if v == "" {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(name)
		b.WriteString(`:"`)
		b.WriteString(encode(v))
		b.WriteString(`"`)
	}

	if tags := t.Tags(); len(tags) > 0 {
		sort.Strings(tags)
		writeField(&b, &first, "tags", strings.Join(tags, ","))
	}
	if deps := t.Dependencies(); len(deps) > 0 {
		sort.Strings(deps)
		writeField(&b, &first, "depends", strings.Join(deps, ","))
	}
	for i, a := range t.Annotations() {
		writeField(&b, &first, "annotation_"+strconv.FormatInt(a.Entry, 10)+"_"+strconv.Itoa(i), a.Description)
	}

	b.WriteByte(']')
	return b.String()
}

func writeField(b *strings.Builder, first *bool, name, value string) {
	if !*first {
		b.WriteByte(' ')
	}
	*first = false
	b.WriteString(name)
	b.WriteString(`:"`)
	b.WriteString(encode(value))
	b.WriteString(`"`)
}

// DecodeTask parses one store line back into a Task.
func DecodeTask(line string) (*task.Task, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return nil, errs.StoreError(nil, "malformed task record: missing brackets")
	}
	body := line[1 : len(line)-1]

	data := map[string]string{}
	var tags []string
	var depends []string
	annotations := map[string]task.Annotation{}

	for len(body) > 0 {
		body = strings.TrimLeft(body, " ")
		if body == "" {
			break
		}
		colon := strings.IndexByte(body, ':')
		if colon < 0 {
			return nil, errs.StoreError(nil, "malformed task record: missing ':' in field")
		}
		name := body[:colon]
		rest := body[colon+1:]
		if len(rest) == 0 || rest[0] != '"' {
			return nil, errs.StoreError(nil, "malformed task record: value not quoted")
		}
		value, consumed, err := readQuoted(rest)
		if err != nil {
			return nil, err
		}
		body = rest[consumed:]

		switch {
		case name == "tags":
			if value != "" {
				tags = strings.Split(value, ",")
			}
		case name == "depends":
			if value != "" {
				depends = strings.Split(value, ",")
			}
		case strings.HasPrefix(name, "annotation_"):
			entryStr := strings.TrimPrefix(name, "annotation_")
			if idx := strings.LastIndexByte(entryStr, '_'); idx >= 0 {
				entryStr = entryStr[:idx]
			}
			entry, _ := strconv.ParseInt(entryStr, 10, 64)
			annotations[name] = task.Annotation{Entry: entry, Description: value}
		default:
			data[name] = value
		}
	}

	var annotationList []task.Annotation
	keys := make([]string, 0, len(annotations))
	for k := range annotations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		annotationList = append(annotationList, annotations[k])
	}

	return task.FromMap(data, tags, annotationList, depends), nil
}

// readQuoted reads a leading `"..."` from s (decoding escapes) and returns
// the decoded value plus how many bytes of s were consumed.
func readQuoted(s string) (string, int, error) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(decodeEscape(s[i+1]))
			i += 2
			continue
		}
		if c == '"' {
			return b.String(), i + 1, nil
		}
		b.WriteByte(c)
		i++
	}
	return "", 0, errs.StoreError(nil, "malformed task record: unterminated quoted value")
}

func encode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func decodeEscape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	default:
		return c
	}
}
