package archive

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// declScanLimit bounds how far into an entry the XML declaration is looked for.
const declScanLimit = 512

// Decode converts raw report bytes to text. A byte-order mark wins, then the
// encoding named in the XML declaration, then UTF-8. Invalid sequences are
// replaced with U+FFFD rather than failing the entry.
func Decode(data []byte) (string, error) {
	fallback := declaredEncoding(data)
	out, _, err := transform.Bytes(unicode.BOMOverride(fallback.NewDecoder()), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// declaredEncoding returns the encoding from an <?xml ... encoding="x"?>
// prolog, or UTF-8 when it is absent or unrecognized.
func declaredEncoding(data []byte) encoding.Encoding {
	head := data
	if len(head) > declScanLimit {
		head = head[:declScanLimit]
	}
	start := bytes.Index(head, []byte("<?xml"))
	if start < 0 {
		return unicode.UTF8
	}
	decl := head[start:]
	if end := bytes.Index(decl, []byte("?>")); end >= 0 {
		decl = decl[:end]
	}

	name := strings.ToLower(strings.TrimSpace(declAttr(string(decl), "encoding")))
	// A UTF-16 declaration readable as ASCII is lying; only a BOM can select UTF-16.
	if name == "" || strings.HasPrefix(name, "utf-16") {
		return unicode.UTF8
	}
	enc, err := htmlindex.Get(name)
	if err != nil || enc == nil {
		return unicode.UTF8
	}
	return enc
}

func declAttr(decl, key string) string {
	i := strings.Index(decl, key)
	if i < 0 {
		return ""
	}
	rest := strings.TrimLeft(decl[i+len(key):], " \t\r\n")
	if !strings.HasPrefix(rest, "=") {
		return ""
	}
	rest = strings.TrimLeft(rest[1:], " \t\r\n")
	if rest == "" || (rest[0] != '"' && rest[0] != '\'') {
		return ""
	}
	q := rest[0]
	end := strings.IndexByte(rest[1:], q)
	if end < 0 {
		return ""
	}
	return rest[1 : 1+end]
}
