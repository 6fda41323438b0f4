// Package textnorm cleans raw recognizer and text-layer output for display.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NoText is returned in place of empty output.
const NoText = "No text detected."

const hspace = `[ \t\f\v\x{00A0}]`

var (
	reLineEnd      = regexp.MustCompile(`\r\n?`)
	reLeading      = regexp.MustCompile(`^` + hspace + `+`)
	reInteriorRun  = regexp.MustCompile(hspace + `{2,}|[\t\f\v\x{00A0}]`)
	reTrailing     = regexp.MustCompile(hspace + `+$`)
	reBlankRun     = regexp.MustCompile(`\n{3,}`)
	reSentenceJoin = regexp.MustCompile(`([.!?])(\p{Lu})`)
	reCommaJoin    = regexp.MustCompile(`(,)(\p{L})`)
	reBullet       = regexp.MustCompile(`(?m)^` + hspace + `*[-*•·]` + hspace + `+`)
	reNumbered     = regexp.MustCompile(`(?m)^` + hspace + `*(\d+\.)` + hspace + `+`)
)

// Normalize applies, in order: NFC composition, newline unification,
// per-line whitespace collapsing, blank-line collapsing, punctuation spacing
// and list-marker normalization, then trims the result.
//
// Leading indentation is quantized to 1, 2 or 4 spaces; any other run of two
// or more horizontal whitespace characters becomes a single space. Empty
// output is replaced by NoText. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if strings.TrimSpace(s) == "" {
		return NoText
	}

	s = norm.NFC.String(s)
	s = reLineEnd.ReplaceAllString(s, "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = collapseLine(line)
	}
	s = strings.Join(lines, "\n")
	s = reBlankRun.ReplaceAllString(s, "\n\n")

	s = tightenPunctuation(s)
	s = reSentenceJoin.ReplaceAllString(s, "$1 $2")
	s = reCommaJoin.ReplaceAllString(s, "$1 $2")

	s = reBullet.ReplaceAllString(s, "• ")
	s = reNumbered.ReplaceAllString(s, "$1 ")

	s = strings.TrimSpace(s)
	if s == "" {
		return NoText
	}
	return s
}

func collapseLine(line string) string {
	line = reTrailing.ReplaceAllString(line, "")
	indent := ""
	if m := reLeading.FindString(line); m != "" {
		indent = quantizeIndent(len([]rune(m)))
		line = line[len(m):]
	}
	return indent + reInteriorRun.ReplaceAllString(line, " ")
}

func quantizeIndent(n int) string {
	switch {
	case n >= 4:
		return "    "
	case n >= 2:
		return "  "
	default:
		return " "
	}
}

// tightenPunctuation drops horizontal whitespace sitting between a
// non-space character and a following '.' or ','.
func tightenPunctuation(s string) string {
	rs := []rune(s)
	out := make([]rune, 0, len(rs))
	for i := 0; i < len(rs); i++ {
		if isHSpace(rs[i]) && len(out) > 0 && !unicode.IsSpace(out[len(out)-1]) {
			j := i
			for j < len(rs) && isHSpace(rs[j]) {
				j++
			}
			if j < len(rs) && (rs[j] == '.' || rs[j] == ',') {
				i = j - 1
				continue
			}
		}
		out = append(out, rs[i])
	}
	return string(out)
}

func isHSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\f', '\v', '\u00a0':
		return true
	}
	return false
}
