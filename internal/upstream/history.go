package upstream

import (
	"encoding/json"
	"strings"
)

// Month is one calendar month in a history listing, with the incidents
// the feed attributed to it.
type Month struct {
	Name      string        `json:"name"`
	Year      int           `json:"year"`
	Incidents []IncidentRef `json:"incidents"`
}

// IncidentRef is the short form of an incident as it appears in a
// history listing. Code keys the detail endpoint.
type IncidentRef struct {
	Code   string `json:"code"`
	Impact string `json:"impact"`
	Name   string `json:"name"`
}

// HistoryParser extracts the embedded month listing from a history page
// body. Implementations return an empty slice for pages that carry no
// listing; a page that cannot be parsed is not an error.
type HistoryParser interface {
	Parse(body string) []Month
}

// EmbeddedJSONParser locates a "months" JSON array embedded in a larger
// document. The feed serves it inside a script block, sometimes as
// escaped text within a string literal, so the parser unescapes the body
// before searching for the structural marker.
type EmbeddedJSONParser struct{}

const monthsMarker = `"months":`

// Parse implements HistoryParser.
func (EmbeddedJSONParser) Parse(body string) []Month {
	if strings.Contains(body, `\"months\"`) {
		body = unescape(body)
	}

	start := strings.Index(body, monthsMarker)
	if start < 0 {
		return nil
	}

	rest := body[start+len(monthsMarker):]
	open := strings.IndexByte(rest, '[')
	if open < 0 || strings.TrimSpace(rest[:open]) != "" {
		return nil
	}

	end := matchBracket(rest, open)
	if end < 0 {
		return nil
	}

	var months []Month
	if err := json.Unmarshal([]byte(rest[open:end+1]), &months); err != nil {
		return nil
	}
	return months
}

// matchBracket returns the index of the ']' closing the '[' at open,
// skipping brackets inside string literals, or -1 if unbalanced.
func matchBracket(s string, open int) int {
	depth := 0
	inString := false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// unescape decodes backslash escape sequences in place, leaving unknown
// sequences untouched.
func unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '"', '\\', '/':
				b.WriteByte(s[i+1])
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case 't':
				b.WriteByte('\t')
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
