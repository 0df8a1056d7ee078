package citations

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/Epistemic-Technology/emolit/models"
)

// GenerateCitekey creates a pandoc-style citekey from a guessed citation.
// Format: author(s)Year (e.g., "smith2020", "smithJones2021", "smithEtAl2020").
// Without authors the first significant title word is used instead.
// If a collision is detected, appends a letter suffix (a, b, c, etc.).
// The returned key is added to existingCitekeys.
func GenerateCitekey(citation models.Citation, existingCitekeys map[string]bool) string {
	authorPart := extractAuthorPart(SplitAuthors(citation.Authors))
	if authorPart == "" && citation.Title != defaultTitle {
		authorPart = titleWord(citation.Title)
	}

	base := sanitizeCitekey(authorPart + yearPattern.FindString(citation.Year))

	citekey := base
	for suffix := 'a'; existingCitekeys[citekey]; suffix++ {
		if suffix > 'z' {
			n := 1
			for existingCitekeys[base+"z"+strconv.Itoa(n)] {
				n++
			}
			citekey = base + "z" + strconv.Itoa(n)
			break
		}
		citekey = base + string(suffix)
	}
	existingCitekeys[citekey] = true

	return citekey
}

// SplitAuthors breaks guessed author lines into individual names. A line such
// as "Jane Doe, John Smith and Ann Lee" yields three names, while "Smith, John"
// and "von Neumann, John" stay single "Last, First" names.
func SplitAuthors(lines []string) []string {
	var names []string
	for _, line := range lines {
		for _, group := range splitAny(line, ";", " and ", " & ") {
			parts := strings.Split(group, ",")
			if len(parts) == 2 && isLastFirst(parts[0], parts[1]) {
				if name := strings.TrimSpace(group); name != "" {
					names = append(names, name)
				}
				continue
			}
			for _, p := range parts {
				if name := strings.TrimSpace(p); name != "" {
					names = append(names, name)
				}
			}
		}
	}
	return names
}

// isLastFirst reports whether "last, first" reads as one inverted name: a
// single surname (or one led by a lowercase particle such as "von") followed
// by one or two given names.
func isLastFirst(last, first string) bool {
	surname := strings.Fields(last)
	given := strings.Fields(first)
	if len(given) < 1 || len(given) > 2 || len(surname) == 0 {
		return false
	}
	return len(surname) == 1 || unicode.IsLower([]rune(surname[0])[0])
}

func splitAny(s string, seps ...string) []string {
	out := []string{s}
	for _, sep := range seps {
		var next []string
		for _, piece := range out {
			next = append(next, strings.Split(piece, sep)...)
		}
		out = next
	}
	return out
}

// extractAuthorPart creates the author portion of the citekey
// Rules:
// - No authors: return empty string
// - 1 author: use last name
// - 2 authors: use both last names (e.g., "smithJones")
// - 3+ authors: use first author's last name + "EtAl"
func extractAuthorPart(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return formatAuthorName(authors[0])
	case 2:
		return formatAuthorName(authors[0]) + capitalize(formatAuthorName(authors[1]))
	default:
		return formatAuthorName(authors[0]) + "EtAl"
	}
}

// formatAuthorName extracts and formats the last name from an author string
// Handles formats like:
// - "Smith, John" -> "smith"
// - "John Smith" -> "smith"
// - "von Neumann, John" -> "vonNeumann"
func formatAuthorName(author string) string {
	var lastName string
	if before, _, ok := strings.Cut(author, ","); ok {
		lastName = strings.TrimSpace(before)
	} else if parts := strings.Fields(author); len(parts) > 0 {
		lastName = parts[len(parts)-1]
	}

	parts := strings.Fields(lastName)
	if len(parts) == 0 {
		return ""
	}
	result := strings.ToLower(parts[0])
	for _, p := range parts[1:] {
		result += capitalize(strings.ToLower(p))
	}
	return result
}

var titleStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "on": true, "in": true, "and": true,
}

func titleWord(title string) string {
	for _, w := range strings.Fields(title) {
		w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) }))
		if w != "" && !titleStopWords[w] {
			return w
		}
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// sanitizeCitekey keeps letters, digits and underscores. An empty key becomes
// "unknown" and a key starting with a digit gets a "ref" prefix.
func sanitizeCitekey(citekey string) string {
	var result strings.Builder
	for _, r := range citekey {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			result.WriteRune(r)
		}
	}

	sanitized := result.String()
	if sanitized == "" {
		return "unknown"
	}
	if unicode.IsDigit(rune(sanitized[0])) {
		sanitized = "ref" + sanitized
	}
	return sanitized
}
