package descriptor

import (
	"strings"

	"github.com/go-arbor/arbor/pkg/errors"
)

// compactFields is the parse result of one compact descriptor string:
//
//	[name:] [$tagName] [#idName] [.class[.class...]] [icon-token] [label]
//
// Every group is optional, but the relative order of present groups is
// fixed. The first unclaimed space or comma begins the freeform label, and
// text inside the label is never re-parsed as structural.
type compactFields struct {
	name    string
	tag     string
	id      string
	classes []string
	icon    string
	label   string
}

const iconPrefix = "icon-"

// parseCompact parses a compact descriptor string. A string with no
// structural markers is a bare label. Malformed structural markers yield a
// ParseError naming the offending text.
func parseCompact(input string) (*compactFields, error) {
	f := &compactFields{}
	s := strings.TrimSpace(input)
	if s == "" {
		return f, nil
	}

	// The structural segment runs to the first space or comma.
	head := s
	tail := ""
	if i := strings.IndexAny(s, " \t,"); i >= 0 {
		head, tail = s[:i], strings.TrimLeft(s[i:], " \t,")
	}

	rest := head
	structural := false

	// name:
	if i := strings.IndexByte(rest, ':'); i >= 0 && isChildName(rest[:i]) {
		f.name = rest[:i]
		rest = rest[i+1:]
		structural = true
	}

	// $tagName
	if strings.HasPrefix(rest, "$") {
		ident, rem := scanIdent(rest[1:])
		if ident == "" {
			return nil, &errors.ParseError{Input: input, Text: rest}
		}
		f.tag = ident
		rest = rem
		structural = true
	}

	// #idName
	if strings.HasPrefix(rest, "#") {
		ident, rem := scanIdent(rest[1:])
		if ident == "" {
			return nil, &errors.ParseError{Input: input, Text: rest}
		}
		f.id = ident
		rest = rem
		structural = true
	}

	// .class[.class...], each optionally carrying the lock marker.
	for strings.HasPrefix(rest, ".") {
		body := rest[1:]
		marker := ""
		if strings.HasPrefix(body, classLockMarker) {
			marker = classLockMarker
			body = body[1:]
		}
		ident, rem := scanIdent(body)
		if ident == "" && marker == "" {
			return nil, &errors.ParseError{Input: input, Text: rest}
		}
		f.classes = append(f.classes, marker+ident)
		rest = rem
		structural = true
	}

	if rest != "" {
		if structural {
			// Residue glued to consumed markers is never re-parsed.
			return nil, &errors.ParseError{Input: input, Text: rest}
		}
		// No markers claimed anything: the whole string is a label,
		// except for a leading icon token.
		tail = s
	}

	if strings.HasPrefix(tail, iconPrefix) {
		token := tail
		if i := strings.IndexAny(tail, " \t,"); i >= 0 {
			token, tail = tail[:i], strings.TrimLeft(tail[i:], " \t,")
		} else {
			tail = ""
		}
		f.icon = token[len(iconPrefix):]
		if f.icon == "" {
			return nil, &errors.ParseError{Input: input, Text: token}
		}
	}

	f.label = strings.TrimSpace(tail)
	return f, nil
}

// scanIdent consumes a leading identifier ([A-Za-z_][A-Za-z0-9_-]*) and
// returns it with the remainder.
func scanIdent(s string) (string, string) {
	n := 0
	for n < len(s) && isIdentByte(s[n], n == 0) {
		n++
	}
	return s[:n], s[n:]
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		return true
	case first:
		return false
	case c >= '0' && c <= '9', c == '-':
		return true
	}
	return false
}

// isChildName accepts a plain identifier optionally followed by an array
// marker: base, base[] or base[idx].
func isChildName(s string) bool {
	base := s
	if i := strings.IndexByte(s, '['); i >= 0 {
		if !strings.HasSuffix(s, "]") {
			return false
		}
		idx := s[i+1 : len(s)-1]
		for j := 0; j < len(idx); j++ {
			if idx[j] < '0' || idx[j] > '9' {
				return false
			}
		}
		base = s[:i]
	}
	if base == "" {
		return false
	}
	ident, rem := scanIdent(base)
	return ident == base && rem == ""
}
