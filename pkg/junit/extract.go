// Package junit extracts failed test cases from JUnit-style XML reports.
//
// The scanner looks only at testcase elements and their failure, error, and
// skipped children. Anything it cannot match is passed over silently.
package junit

import (
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/dkoosis/faildiff/pkg/classify"
	"github.com/dkoosis/faildiff/pkg/failure"
)

const (
	tagTestCase = "testcase"
	tagFailure  = "failure"
	tagError    = "error"
	tagSkipped  = "skipped"

	abortedKeyword = "aborted"
)

// Stats counts what a single Extract call saw.
type Stats struct {
	Cases     int // testcase elements matched, including self-closing ones
	Failing   int // records emitted
	Malformed int // testcase open tags that could not be matched
}

// Extractor turns report text into failure records.
type Extractor struct {
	classifier *classify.Classifier
}

// NewExtractor creates an extractor that labels records with c.
// A nil classifier uses the built-in rules.
func NewExtractor(c *classify.Classifier) *Extractor {
	if c == nil {
		c = classify.New()
	}
	return &Extractor{classifier: c}
}

// Extract returns one record per failing, erroring, or aborted test case in
// text, in document order, each tagged with origin.
func (e *Extractor) Extract(text, origin string) ([]failure.Record, Stats) {
	var (
		records []failure.Record
		stats   Stats
	)

	pos := 0
	for {
		start := findOpen(text, tagTestCase, pos)
		if start < 0 {
			break
		}
		el, ok := scanElement(text, tagTestCase, start)
		if !ok || !el.closed {
			stats.Malformed++
			pos = start + len(tagTestCase) + 1
			continue
		}
		pos = el.end
		stats.Cases++
		if el.selfClosing {
			// No children, so nothing can have failed.
			continue
		}

		if rec, ok := e.record(el, origin); ok {
			records = append(records, rec)
		}
	}

	stats.Failing = len(records)
	return records, stats
}

// record builds the record for one testcase element, or reports false when
// the case did not fail.
func (e *Extractor) record(tc element, origin string) (failure.Record, bool) {
	status, tag, ok := classifyBody(tc.body)
	if !ok {
		return failure.Record{}, false
	}

	attrs := parseAttrs(tc.attrs)
	testName := attrOr(attrs, "name", failure.Unknown)
	className := attrOr(attrs, "classname", failure.Unknown)

	message, trace := detail(tc.body, tag)

	return failure.Record{
		TestName:   testName,
		ClassName:  className,
		SourceFile: e.classifier.SourceFile(className),
		ModuleName: e.classifier.Module(className),
		Status:     status,
		Message:    truncate(normalizeNewlines(html.UnescapeString(message)), failure.MaxMessageLen),
		StackTrace: truncate(trace, failure.MaxStackTraceLen),
		Duration:   parseTime(attrs["time"]),
		Origin:     origin,
	}, true
}

// classifyBody picks the status for a testcase body. Error outranks failure,
// which outranks aborted; a skipped child counts only when the body mentions
// "aborted".
func classifyBody(body string) (failure.Status, string, bool) {
	switch {
	case hasTag(body, tagError):
		return failure.StatusError, tagError, true
	case hasTag(body, tagFailure):
		return failure.StatusFailure, tagFailure, true
	case hasTag(body, tagSkipped) && strings.Contains(strings.ToLower(body), abortedKeyword):
		return failure.StatusAborted, tagSkipped, true
	}
	return "", "", false
}

// detail returns the raw message and the cleaned stack trace for the first
// tag child of body. When that child has no message attribute, the first
// message attribute anywhere in the body is used instead.
func detail(body, tag string) (message, trace string) {
	start := findOpen(body, tag, 0)
	if start >= 0 {
		if el, ok := scanElement(body, tag, start); ok {
			message = parseAttrs(el.attrs)["message"]
			if el.closed && !el.selfClosing {
				trace = strings.TrimSpace(unwrapCDATA(el.body))
			}
		}
	}
	if message == "" {
		message = firstMessageAttr(body)
	}
	return message, trace
}

// firstMessageAttr finds the first message="..." in s, wherever it occurs.
func firstMessageAttr(s string) string {
	const key = `message="`
	from := 0
	for {
		i := strings.Index(s[from:], key)
		if i < 0 {
			return ""
		}
		at := from + i
		// Require an attribute boundary so e.g. errormessage="" is not read.
		if at == 0 || isSpace(s[at-1]) {
			rest := s[at+len(key):]
			if end := strings.IndexByte(rest, '"'); end >= 0 {
				return rest[:end]
			}
			return ""
		}
		from = at + len(key)
	}
}

// parseTime reads a testcase time attribute in seconds. Anything that is
// not a plain non-negative number reads as zero.
func parseTime(s string) float64 {
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// normalizeNewlines maps CRLF and lone CR to LF, as an XML parser would.
func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	return newlines.Replace(s)
}

func attrOr(attrs map[string]string, key, def string) string {
	if v, ok := attrs[key]; ok {
		return v
	}
	return def
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
