package junit

import "strings"

// element is one scanned tag: its raw attribute text and, unless the tag is
// self-closing, the inner text up to the matching end tag.
type element struct {
	attrs       string
	body        string
	selfClosing bool
	closed      bool // end tag found (always true when selfClosing)
	end         int  // offset just past the element in the scanned text
}

// findOpen returns the offset of the next "<name" tag at or after from whose
// name is not merely a prefix of a longer name. Returns -1 if none.
func findOpen(s, name string, from int) int {
	needle := "<" + name
	for from <= len(s) {
		i := strings.Index(s[from:], needle)
		if i < 0 {
			return -1
		}
		at := from + i
		next := at + len(needle)
		if next >= len(s) || isNameBoundary(s[next]) {
			return at
		}
		from = next
	}
	return -1
}

func isNameBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '>', '/':
		return true
	}
	return false
}

// hasTag reports whether s contains a name tag.
func hasTag(s, name string) bool {
	return findOpen(s, name, 0) >= 0
}

// scanElement reads the element whose open tag starts at start.
// ok is false when the open tag never terminates. An element whose end tag
// is missing is returned with closed=false and an empty body.
func scanElement(s, name string, start int) (element, bool) {
	attrStart := start + len(name) + 1
	gt := tagEnd(s, attrStart)
	if gt < 0 {
		return element{}, false
	}

	attrs := s[attrStart:gt]
	if strings.HasSuffix(attrs, "/") {
		return element{
			attrs:       strings.TrimSuffix(attrs, "/"),
			selfClosing: true,
			closed:      true,
			end:         gt + 1,
		}, true
	}

	closeTag := "</" + name + ">"
	bodyStart := gt + 1
	j := strings.Index(s[bodyStart:], closeTag)
	if j < 0 {
		return element{attrs: attrs, end: bodyStart}, true
	}
	return element{
		attrs:  attrs,
		body:   s[bodyStart : bodyStart+j],
		closed: true,
		end:    bodyStart + j + len(closeTag),
	}, true
}

// tagEnd returns the offset of the '>' closing a tag whose attributes begin
// at from, skipping '>' inside quoted attribute values. Returns -1 if the tag
// is unterminated.
func tagEnd(s string, from int) int {
	var quote byte
	for i := from; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		case c == '<':
			// A new tag began before this one closed.
			return -1
		}
	}
	return -1
}

// parseAttrs reads name="value" pairs from raw attribute text. Values may use
// single or double quotes; unquoted values run to the next whitespace. Values
// are returned exactly as written. The first occurrence of a name wins.
func parseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	i := 0
	for i < len(raw) {
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		nameStart := i
		for i < len(raw) && raw[i] != '=' && !isSpace(raw[i]) {
			i++
		}
		name := raw[nameStart:i]
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] != '=' {
			// Valueless attribute or trailing junk.
			if i == nameStart {
				i++
			}
			continue
		}
		i++ // '='
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) {
			break
		}

		var value string
		if q := raw[i]; q == '"' || q == '\'' {
			end := strings.IndexByte(raw[i+1:], q)
			if end < 0 {
				// Unterminated quote: the rest of the tag is unreliable.
				break
			}
			value = raw[i+1 : i+1+end]
			i += end + 2
		} else {
			valStart := i
			for i < len(raw) && !isSpace(raw[i]) {
				i++
			}
			value = raw[valStart:i]
		}

		if name == "" {
			continue
		}
		if _, seen := attrs[name]; !seen {
			attrs[name] = value
		}
	}
	return attrs
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// unwrapCDATA replaces every CDATA section with its literal content. Text
// outside the sections is kept as written.
func unwrapCDATA(s string) string {
	const open, close = "<![CDATA[", "]]>"
	if !strings.Contains(s, open) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for {
		i := strings.Index(s, open)
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:i])
		rest := s[i+len(open):]
		j := strings.Index(rest, close)
		if j < 0 {
			// Unterminated section: keep its content as-is.
			sb.WriteString(rest)
			return sb.String()
		}
		sb.WriteString(rest[:j])
		s = rest[j+len(close):]
	}
}
