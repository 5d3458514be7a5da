package event

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FormatMode renders a raw agent mode string for notification display:
// first character upper-cased, the rest lower-cased. An empty mode becomes
// "Unknown mode".
func FormatMode(mode string) string {
	if mode == "" {
		return "Unknown mode"
	}
	return titleCase(mode)
}

// FormatModel renders a raw model id for notification display. The id is
// split on '-', except that a '-' flanked by digits on both sides is
// rewritten to '.' instead of splitting, so version numbers survive:
// "claude-3-5-sonnet" becomes "Claude 3.5 Sonnet". Each segment is
// title-cased and segments are joined with single spaces. An empty id
// becomes "Unknown model".
func FormatModel(id string) string {
	if id == "" {
		return "Unknown model"
	}
	var segs []string
	var cur strings.Builder
	runes := []rune(id)
	for i, r := range runes {
		if r != '-' {
			cur.WriteRune(r)
			continue
		}
		prevDigit := i > 0 && isDigit(runes[i-1])
		nextDigit := i+1 < len(runes) && isDigit(runes[i+1])
		if prevDigit && nextDigit {
			cur.WriteByte('.')
			continue
		}
		if cur.Len() > 0 {
			segs = append(segs, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		segs = append(segs, cur.String())
	}
	var parts []string
	for _, s := range segs {
		if s == "" {
			continue
		}
		parts = append(parts, titleCase(s))
	}
	if len(parts) == 0 {
		return "Unknown model"
	}
	return strings.Join(parts, " ")
}

func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
