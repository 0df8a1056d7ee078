package citations

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Epistemic-Technology/emolit/models"
)

const (
	scanLines    = 200
	titleLines   = 20
	authorLines  = 50
	journalLines = 100
	yearLines    = 100

	minTitleLength = 30
	titleDigitSpan = 5

	defaultTitle = "Untitled"
)

var (
	authorPattern  = regexp.MustCompile(`(?i)(Author[s]?|Authors?:)`)
	journalPattern = regexp.MustCompile(`(?i)(Published|Journal|DOI|Institute|University)`)
	yearPattern    = regexp.MustCompile(`\b(19[0-9]{2}|20[0-9]{2})\b`)
)

// GuessFromText splits text on newlines and guesses a citation from the
// leading lines.
func GuessFromText(text string) models.Citation {
	return Guess(strings.Split(text, "\n"))
}

// Guess infers bibliographic fields from the first lines of a document.
// Each field is best effort and independent of the others; no match yields
// the field's default. The result is always tagged as guessed.
func Guess(lines []string) models.Citation {
	lines = head(lines, scanLines)
	return NewCitation(
		guessTitle(head(lines, titleLines)),
		guessAuthors(lines, authorLines),
		firstMatch(head(lines, journalLines), journalPattern),
		guessYear(head(lines, yearLines)),
	)
}

// NewCitation normalizes raw fields into a Citation: the title defaults to
// "Untitled", authors are trimmed with empties dropped, and the source is
// always "guessed".
func NewCitation(title string, authors []string, journal, year string) models.Citation {
	if title == "" {
		title = defaultTitle
	}
	cleaned := make([]string, 0, len(authors))
	for _, a := range authors {
		if a = strings.TrimSpace(a); a != "" {
			cleaned = append(cleaned, a)
		}
	}
	return models.Citation{
		Title:   title,
		Authors: cleaned,
		Journal: journal,
		Year:    year,
		Source:  models.CitationSource,
	}
}

// EmptyCitation is the citation attached to results that skip guessing.
func EmptyCitation() models.Citation {
	return NewCitation("", nil, "", "")
}

func guessTitle(lines []string) string {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len([]rune(trimmed)) > minTitleLength && !leadingDigit(line) {
			return trimmed
		}
	}
	return ""
}

// leadingDigit reports whether any of the first few runes of the untrimmed
// line is a digit.
func leadingDigit(line string) bool {
	n := 0
	for _, r := range line {
		if n == titleDigitSpan {
			break
		}
		if unicode.IsDigit(r) {
			return true
		}
		n++
	}
	return false
}

// guessAuthors appends the line following every author marker, not just the
// first one. The window only limits where markers are searched; the following
// line may sit just past it.
func guessAuthors(lines []string, window int) []string {
	var authors []string
	for i, line := range head(lines, window) {
		if !authorPattern.MatchString(line) {
			continue
		}
		if i+1 < len(lines) {
			authors = append(authors, strings.TrimSpace(lines[i+1]))
		}
	}
	return authors
}

func firstMatch(lines []string, pattern *regexp.Regexp) string {
	for _, line := range lines {
		if pattern.MatchString(line) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

// guessYear returns the first standalone 19xx/20xx token. \b is ASCII-only,
// so a year right after a non-ASCII letter still matches.
func guessYear(lines []string) string {
	for _, line := range lines {
		if year := yearPattern.FindString(line); year != "" {
			return year
		}
	}
	return ""
}

func head(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
