package dialog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mkuleshov/pgdbot/pkg/domain"
)

// MaxMessageLength is the transport's hard message size limit.
const MaxMessageLength = 4096

// Placeholder replaces a missing or null summary value, never a blank.
const Placeholder = "-"

// truncationNotice is appended to any section body that had to be cut.
// It is already in escaped MarkdownV2 form.
var truncationNotice = "\n\n_" + EscapeMarkdownV2("… truncated. Use Export to get the full text.") + "_"

// markdownV2Reserved is the character set the transport's strict dialect
// requires to be escaped.
const markdownV2Reserved = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdownV2 escapes every reserved MarkdownV2 character in s.
func EscapeMarkdownV2(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < utf8.RuneSelf && strings.ContainsRune(markdownV2Reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RenderSection turns one section into a transport-safe MarkdownV2 body:
// the engine's **bold** convention becomes the transport's *bold*, double
// newlines collapse to single, everything else is escaped. Bodies that
// cannot be rendered safely (invalid UTF-8, unbalanced emphasis) return
// an error; the controller recovers locally with a fallback message.
func RenderSection(sec domain.Section) (string, error) {
	if !utf8.ValidString(sec.Body) {
		return "", fmt.Errorf("section %q: body is not valid UTF-8", sec.Title)
	}

	body := strings.ReplaceAll(sec.Body, "\n\n", "\n")

	// Segments between ** markers alternate plain/emphasized. Escaping
	// happens per segment so the emphasis asterisks survive as markup.
	parts := strings.Split(body, "**")
	if len(parts)%2 == 0 {
		return "", fmt.Errorf("section %q: unbalanced emphasis markup", sec.Title)
	}
	for i, p := range parts {
		parts[i] = EscapeMarkdownV2(p)
	}

	out := "*" + EscapeMarkdownV2(sec.Title) + "*\n\n" + strings.Join(parts, "*")
	return clampMessage(out), nil
}

// clampMessage enforces the transport maximum. Truncation is
// deterministic, never splits an escape sequence or leaves emphasis
// unclosed, and always ends with the fixed visible notice.
func clampMessage(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxMessageLength {
		return s
	}

	// Reserve room for the notice plus up to three closing markers.
	limit := MaxMessageLength - utf8.RuneCountInString(truncationNotice) - 3
	cut := runes[:limit]

	// A trailing lone backslash would turn the notice's first character
	// into an escape target.
	if n := trailingBackslashes(cut); n%2 == 1 {
		cut = cut[:len(cut)-1]
	}

	// Close any emphasis or code span the cut left dangling.
	out := string(cut)
	for _, marker := range []string{"*", "_", "`"} {
		if unescapedCount(out, marker[0])%2 == 1 {
			out += marker
		}
	}
	return out + truncationNotice
}

func trailingBackslashes(runes []rune) int {
	n := 0
	for i := len(runes) - 1; i >= 0 && runes[i] == '\\'; i-- {
		n++
	}
	return n
}

func unescapedCount(s string, marker byte) int {
	n := 0
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == marker:
			n++
		}
	}
	return n
}

// RenderSummary builds the single summary message: a header naming the
// subject(s), then every table's rows in order. Missing values render as
// the fixed placeholder.
func RenderSummary(subject domain.Person, partner *domain.Person, tables []domain.SummaryTable) string {
	var b strings.Builder

	header := fmt.Sprintf("Results for %s (%s)", subject.Name, domain.FormatBirthDate(subject.BirthDate))
	if partner != nil {
		header = fmt.Sprintf("Results for %s (%s) and %s (%s)",
			subject.Name, domain.FormatBirthDate(subject.BirthDate),
			partner.Name, domain.FormatBirthDate(partner.BirthDate))
	}
	b.WriteString("*" + EscapeMarkdownV2(header) + "*\n")

	for _, table := range tables {
		b.WriteString("\n*" + EscapeMarkdownV2(table.Title) + ":*\n")
		for _, row := range table.Rows {
			value := row.Value
			if value == "" {
				value = Placeholder
			}
			b.WriteString("_" + EscapeMarkdownV2(row.Label) + "_: `" + EscapeMarkdownV2(value) + "`\n")
		}
	}

	return clampMessage(strings.TrimRight(b.String(), "\n"))
}
