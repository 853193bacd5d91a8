// Package classify maps fully-qualified test class names to module labels
// and guesses the source file a test class lives in.
package classify

import (
	"strings"

	"github.com/dkoosis/faildiff/pkg/failure"
)

// Rule maps one package segment keyword to a module label.
type Rule struct {
	Keyword string `yaml:"keyword"`
	Label   string `yaml:"label"`
}

// DefaultRules is the built-in keyword table. Order matters: the first
// segment of a class name that matches any keyword wins, and when a segment
// could match more than one rule the earliest rule is used.
var DefaultRules = []Rule{
	{"sql", "sql/core"},
	{"catalyst", "sql/catalyst"},
	{"hive", "sql/hive"},
	{"streaming", "streaming"},
	{"mllib", "mllib"},
	{"ml", "mllib"},
	{"graphx", "graphx"},
	{"core", "core"},
	{"yarn", "resource-managers/yarn"},
	{"kubernetes", "resource-managers/kubernetes"},
	{"mesos", "resource-managers/mesos"},
	{"avro", "connector/avro"},
	{"kafka", "connector/kafka"},
	{"connect", "connector/connect"},
	{"protobuf", "connector/protobuf"},
	{"pipelines", "sql/pipelines"},
	{"scripting", "sql/core"},
	{"artifact", "sql/core"},
	{"execution", "sql/core"},
	{"onesecurity", "onesecurity"},
}

// Defaults for the structural fallback and source path guess.
const (
	DefaultRootToken       = "spark"
	DefaultSourceExtension = ".scala"
)

// testSuffixes are stripped from a simple class name, first match only.
var testSuffixes = []string{"Suite", "Test", "Tests", "Spec"}

// minFallbackSegments is the shortest name eligible for the root-token fallback.
const minFallbackSegments = 4

// Classifier is a pure, total mapping from class name to module label.
// The zero value is not usable; build one with New.
type Classifier struct {
	rules     []Rule
	rootToken string
	extension string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRules replaces the keyword table. Keywords are matched case-insensitively.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) {
		c.rules = normalizeRules(rules)
	}
}

// WithRootToken sets the namespace token whose following segment names the
// module when no keyword matches.
func WithRootToken(token string) Option {
	return func(c *Classifier) {
		c.rootToken = token
	}
}

// WithSourceExtension sets the extension appended by SourceFile.
func WithSourceExtension(ext string) Option {
	return func(c *Classifier) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.extension = ext
	}
}

// New builds a classifier from the defaults plus opts.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		rules:     normalizeRules(DefaultRules),
		rootToken: DefaultRootToken,
		extension: DefaultSourceExtension,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func normalizeRules(rules []Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kw := strings.ToLower(strings.TrimSpace(r.Keyword))
		if kw == "" || r.Label == "" {
			continue
		}
		out = append(out, Rule{Keyword: kw, Label: r.Label})
	}
	return out
}

// Rules returns a copy of the active keyword table.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Module returns the module label for className, or "unknown".
func (c *Classifier) Module(className string) string {
	parts := strings.Split(className, ".")

	for _, part := range parts {
		lower := strings.ToLower(part)
		for _, r := range c.rules {
			if lower == r.Keyword {
				return r.Label
			}
		}
	}

	if len(parts) >= minFallbackSegments && c.rootToken != "" {
		for i, part := range parts {
			if part != c.rootToken {
				continue
			}
			if i+1 < len(parts) && parts[i+1] != "" {
				return parts[i+1]
			}
			break
		}
	}

	return failure.Unknown
}

// SourceFile guesses the production source path for className: the package
// segments joined with "/", then the simple name without its test suffix.
// The result is a heuristic; nothing checks that the file exists.
func (c *Classifier) SourceFile(className string) string {
	base := BaseName(className)
	i := strings.LastIndex(className, ".")
	if i < 0 {
		return base + c.extension
	}
	return strings.ReplaceAll(className[:i], ".", "/") + "/" + base + c.extension
}

// BaseName strips the first matching test suffix from the simple class name.
// A name that is nothing but a suffix ("Test") is returned unchanged.
func BaseName(className string) string {
	simple := className
	if i := strings.LastIndex(className, "."); i >= 0 {
		simple = className[i+1:]
	}
	for _, suffix := range testSuffixes {
		if strings.HasSuffix(simple, suffix) {
			if base := strings.TrimSuffix(simple, suffix); base != "" {
				return base
			}
			return simple
		}
	}
	return simple
}
