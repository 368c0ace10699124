package soap

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// HeadingMatch selects how a line is recognised as a section heading.
type HeadingMatch int

const (
	// Strict accepts a line whose first word is a section keyword, or a
	// bare S, O, A or P letter standing alone ("S", "S:", "S (Subjetivo)").
	// A keyword line with extra words needs a colon, markdown decoration
	// or capitals, so "Plano de retorno" stays content.
	Strict HeadingMatch = iota
	// Lenient accepts any line containing a heading keyword or starting
	// with S, O, A or P. Content lines such as "PA 120/80" or
	// "Sente dor" are therefore taken as headings.
	Lenient
)

// ParseHeadingMatch accepts "strict" or "lenient".
func ParseHeadingMatch(s string) (HeadingMatch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	default:
		return Strict, fmt.Errorf("unknown heading match %q", s)
	}
}

func (m HeadingMatch) String() string {
	if m == Lenient {
		return "lenient"
	}
	return "strict"
}

// maxHeadingWords bounds the words a keyword heading may carry before its
// colon, e.g. "AVALIAÇÃO DIAGNÓSTICA:".
const maxHeadingWords = 3

var (
	headingLead    = regexp.MustCompile(`^[\s#*_>•-]*(?:\d+[.)]\s*)?[\s#*_]*`)
	letterPrefix   = regexp.MustCompile(`^[SOAP]\s*[-–]\s*`)
	headingKeyword = regexp.MustCompile(`^(?:SUBJETIVO|SUBJECTIVE|OBJETIVO|OBJECTIVE|AVALIACAO|ASSESSMENT|PLANO|PLAN)\b`)
	headingLetter  = regexp.MustCompile(`^([SOAP])\s*(?:\(\s*[A-Z]+\s*\))?[\s*_]*(:|$)`)
	letterTag      = regexp.MustCompile(`\(\s*[SOAP]\s*\)`)
)

// Splitter buckets reply lines into note sections. It holds no scan state
// and is safe for concurrent use.
type Splitter struct {
	match HeadingMatch
}

func NewSplitter(match HeadingMatch) *Splitter {
	return &Splitter{match: match}
}

// Split scans reply line by line. A heading line switches the current
// section; other non-blank lines are appended to the current section.
// Lines before the first heading are dropped.
func (s *Splitter) Split(reply string) Note {
	var buf [Plan + 1]strings.Builder
	current := None

	for _, raw := range strings.Split(reply, "\n") {
		line := strings.TrimSpace(raw)

		if section, rest, ok := s.heading(line); ok {
			current = section
			line = rest
		}

		if current != None && line != "" {
			buf[current].WriteString(line)
			buf[current].WriteString("\n")
		}
	}

	var note Note
	for _, sec := range Sections {
		*note.field(sec) = strings.TrimSpace(buf[sec].String())
	}
	return note
}

// heading classifies a trimmed line. rest is content sharing the heading line
// and is always empty in lenient mode.
func (s *Splitter) heading(line string) (Section, string, bool) {
	if s.match == Lenient {
		sec, ok := lenientHeading(line)
		return sec, "", ok
	}
	return strictHeadingOf(line)
}

// lenientHeading evaluates the rules top to bottom, first match wins.
func lenientHeading(line string) (Section, bool) {
	upper := strings.ToUpper(line)
	switch {
	case strings.Contains(upper, "SUBJETIVO") || strings.HasPrefix(upper, "S"):
		return Subjective, true
	case strings.Contains(upper, "OBJETIVO") || strings.HasPrefix(upper, "O"):
		return Objective, true
	case strings.Contains(upper, "AVALIAÇÃO") || strings.Contains(upper, "AVALIACAO") || strings.HasPrefix(upper, "A"):
		return Assessment, true
	case strings.Contains(upper, "PLANO") || strings.HasPrefix(upper, "P"):
		return Plan, true
	default:
		return None, false
	}
}

// strictHeadingOf matches on the upper-cased, accent-folded line. Text after
// the heading's colon is returned as rest.
func strictHeadingOf(line string) (Section, string, bool) {
	upper := strings.ToUpper(foldAccents(line))
	lead := headingLead.FindString(upper)
	body := upper[len(lead):]
	if body == "" {
		return None, "", false
	}

	// Decorated or all-caps lines read as headings even without a colon.
	shaped := strings.ContainsAny(lead, "#*_") || strings.IndexFunc(line, unicode.IsLower) < 0

	candidates := []string{body}
	if p := letterPrefix.FindString(body); p != "" {
		candidates = []string{body[len(p):], body}
	}
	for _, c := range candidates {
		kw := headingKeyword.FindString(c)
		if kw == "" {
			continue
		}
		tail := c[len(kw):]
		if keywordTailIsHeading(tail, shaped) {
			return sectionOf(kw[0]), restAfterColon(line, tail), true
		}
	}

	if m := headingLetter.FindStringSubmatch(body); m != nil {
		return sectionOf(m[1][0]), restAfterColon(line, m[2]), true
	}
	return None, "", false
}

// keywordTailIsHeading judges what follows the keyword: nothing, a short
// qualifier ending in a colon, or a short qualifier on a shaped line.
func keywordTailIsHeading(tail string, shaped bool) bool {
	before, _, hasColon := strings.Cut(tail, ":")
	before = letterTag.ReplaceAllString(before, " ")

	words := 0
	for _, f := range strings.Fields(before) {
		if strings.IndexFunc(f, isWordRune) >= 0 {
			words++
		}
	}

	switch {
	case words > maxHeadingWords:
		return false
	case words == 0 || hasColon:
		return true
	default:
		return shaped
	}
}

// restAfterColon returns the content after the first colon of line when the
// matched part contains one. Folding never adds or removes ':' and nothing
// before the matched part holds one, so the indices agree.
func restAfterColon(line, matched string) string {
	if !strings.Contains(matched, ":") {
		return ""
	}
	i := strings.Index(line, ":")
	if i < 0 {
		return ""
	}
	return strings.Trim(line[i+1:], " \t*_")
}

func sectionOf(letter byte) Section {
	switch letter {
	case 'S':
		return Subjective
	case 'O':
		return Objective
	case 'A':
		return Assessment
	default:
		return Plan
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// foldAccents strips combining marks: "AVALIAÇÃO" -> "AVALIACAO".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
