package dialog

import (
	"fmt"
	"strings"

	"github.com/mkuleshov/pgdbot/pkg/domain"
)

// BuildReport flattens a browsing session into a single plain-text
// document: header, summary tables, then every section under its own
// heading in the frozen order. Emphasis markup is stripped since the
// target is a generic document, not the chat dialect.
//
// The filename is deterministic for one identity and session date;
// re-exporting overwrites rather than erroring.
func BuildReport(identity string, sess *domain.Session) (data []byte, filename string) {
	var b strings.Builder

	header := fmt.Sprintf("Personality analysis: %s (%s)",
		sess.Subject.Name, domain.FormatBirthDate(sess.Subject.BirthDate))
	if sess.Mode == domain.ModePair {
		header = fmt.Sprintf("Compatibility analysis: %s (%s) and %s (%s)",
			sess.Subject.Name, domain.FormatBirthDate(sess.Subject.BirthDate),
			sess.Partner.Name, domain.FormatBirthDate(sess.Partner.BirthDate))
	}
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("=", len([]rune(header))) + "\n\n")

	for _, table := range sess.Summary {
		b.WriteString(table.Title + "\n")
		for _, row := range table.Rows {
			value := row.Value
			if value == "" {
				value = Placeholder
			}
			b.WriteString(fmt.Sprintf("  %s: %s\n", row.Label, value))
		}
		b.WriteString("\n")
	}

	for _, sec := range sess.Sections {
		b.WriteString(fmt.Sprintf("== %s ==\n\n", sec.Title))
		b.WriteString(stripEmphasis(sec.Body))
		b.WriteString("\n\n")
	}

	filename = fmt.Sprintf("pgd-report-%s-%s.txt",
		sanitizeFilePart(identity), sess.CreatedAt.Format("02-01-2006"))
	return []byte(b.String()), filename
}

// stripEmphasis removes the engine's internal markup, leaving plain text.
func stripEmphasis(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	return strings.TrimSpace(s)
}

// sanitizeFilePart keeps the filename portable across filesystems.
func sanitizeFilePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
