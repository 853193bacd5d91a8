package render

import (
	"fmt"
	"strings"

	"github.com/dkoosis/faildiff/pkg/pattern"
)

// maxDetailLines caps message lines per test in LLM output.
const maxDetailLines = 3

// LLM renders patterns as terse plain text for AI consumption.
// No ANSI codes; output order follows pattern order, which mappers keep
// deterministic.
type LLM struct{}

// NewLLM creates an LLM renderer.
func NewLLM() *LLM {
	return &LLM{}
}

// Render formats all patterns for LLM consumption.
func (l *LLM) Render(patterns []pattern.Pattern) string {
	var sb strings.Builder
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			l.summary(&sb, v)
		case *pattern.Error:
			fmt.Fprintf(&sb, "WARN %s: %s\n", v.Source, v.Message)
		case *pattern.Leaderboard:
			l.leaderboard(&sb, v)
		case *pattern.Comparison:
			l.comparison(&sb, v)
		case *pattern.TestTable:
			l.table(&sb, v)
		case *pattern.Sparkline:
			// Trend glyphs carry nothing the counts don't.
		}
	}
	return sb.String()
}

func (l *LLM) summary(sb *strings.Builder, s *pattern.Summary) {
	sb.WriteString("SCOPE: " + s.Label + "\n")
	parts := make([]string, 0, len(s.Metrics))
	for _, m := range s.Metrics {
		parts = append(parts, m.Label+" "+m.Value)
	}
	if len(parts) > 0 {
		sb.WriteString(strings.Join(parts, ", ") + "\n")
	}
}

func (l *LLM) leaderboard(sb *strings.Builder, lb *pattern.Leaderboard) {
	if len(lb.Items) == 0 {
		return
	}
	sb.WriteString("\n" + lb.Label + "\n")
	for _, item := range lb.Items {
		fmt.Fprintf(sb, "  %s %s\n", item.Name, item.Metric)
	}
	if lb.TotalCount > len(lb.Items) {
		fmt.Fprintf(sb, "  ... (%d more)\n", lb.TotalCount-len(lb.Items))
	}
}

func (l *LLM) comparison(sb *strings.Builder, c *pattern.Comparison) {
	if len(c.Changes) == 0 {
		return
	}
	sb.WriteString("\n" + c.Label + "\n")
	for _, item := range c.Changes {
		fmt.Fprintf(sb, "  %s %s -> %s (%+g%s)\n", item.Label, item.Before, item.After, item.Change, item.Unit)
	}
}

func (l *LLM) table(sb *strings.Builder, t *pattern.TestTable) {
	if len(t.Results) == 0 {
		return
	}
	sb.WriteString("\n## " + t.Label + "\n")
	for _, item := range t.Results {
		name := item.Name
		if item.Module != "" && item.Module != t.Source {
			name = "[" + item.Module + "] " + name
		}
		line := fmt.Sprintf("  %s %s", llmLevel(item.Status), name)
		if item.Duration != "" {
			line += " (" + item.Duration + ")"
		}
		sb.WriteString(line + "\n")

		if item.Details == "" {
			continue
		}
		lines := strings.Split(item.Details, "\n")
		shown := min(len(lines), maxDetailLines)
		for _, d := range lines[:shown] {
			sb.WriteString("    " + d + "\n")
		}
		if len(lines) > shown {
			fmt.Fprintf(sb, "    ... (%d more lines)\n", len(lines)-shown)
		}
	}
}

func llmLevel(status string) string {
	switch status {
	case "error":
		return "ERR "
	case "failure":
		return "FAIL"
	case "aborted":
		return "ABRT"
	case "fixed":
		return "OK  "
	default:
		return "----"
	}
}
