package solr

import (
	"regexp"
	"strings"
)

// MatchAll is the query that matches every document.
const MatchAll = "*:*"

var termEscaper = strings.NewReplacer(
	`\`, `\\`, `+`, `\+`, `-`, `\-`, `&&`, `\&&`, `||`, `\||`,
	`!`, `\!`, `(`, `\(`, `)`, `\)`, `{`, `\{`, `}`, `\}`,
	`[`, `\[`, `]`, `\]`, `^`, `\^`, `"`, `\"`, `~`, `\~`,
	`*`, `\*`, `?`, `\?`, `:`, `\:`, `/`, `\/`,
)

var phraseEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

var phrasePattern = regexp.MustCompile(`"[^"]*"`)

// EscapeTerm escapes query-syntax characters in a bare term.
func EscapeTerm(s string) string {
	return termEscaper.Replace(s)
}

// EscapePhrase quotes s as a phrase.
func EscapePhrase(s string) string {
	return `"` + phraseEscaper.Replace(s) + `"`
}

// EscapeText escapes free text, keeping double-quoted parts as phrases.
func EscapeText(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range phrasePattern.FindAllStringIndex(s, -1) {
		b.WriteString(EscapeTerm(s[last:loc[0]]))
		b.WriteString(EscapePhrase(s[loc[0]+1 : loc[1]-1]))
		last = loc[1]
	}
	b.WriteString(EscapeTerm(s[last:]))
	return strings.TrimSpace(b.String())
}

// FieldName maps a dotted relation path to a Solr field name.
func FieldName(field string) string {
	return strings.ReplaceAll(field, ".", "_")
}
