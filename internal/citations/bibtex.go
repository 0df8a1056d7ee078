package citations

import (
	"fmt"
	"strings"

	"github.com/Epistemic-Technology/emolit/models"
)

// Entry pairs a guessed citation with the concept it was summarized under.
type Entry struct {
	Citation    models.Citation
	ConceptName string
}

// GenerateBibTeXEntry creates a BibTeX entry from a guessed citation.
// Citations with a journal line become @article, everything else @misc.
func GenerateBibTeXEntry(entry Entry, citekey string) string {
	if citekey == "" {
		citekey = "unknown"
	}

	c := entry.Citation
	entryType := "misc"
	if c.Journal != "" {
		entryType = "article"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", entryType, citekey)

	if c.Title != "" {
		fmt.Fprintf(&b, "  title = {%s},\n", escapeBibTeX(c.Title))
	}
	if authors := SplitAuthors(c.Authors); len(authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", escapeBibTeX(formatBibTeXAuthors(authors)))
	}
	if c.Journal != "" {
		fmt.Fprintf(&b, "  journal = {%s},\n", escapeBibTeX(c.Journal))
	}
	if c.Year != "" {
		fmt.Fprintf(&b, "  year = {%s},\n", c.Year)
	}
	if entry.ConceptName != "" {
		fmt.Fprintf(&b, "  keywords = {%s},\n", escapeBibTeX(entry.ConceptName))
	}
	fmt.Fprintf(&b, "  note = {Citation fields %s heuristically},\n", c.Source)

	return strings.TrimSuffix(b.String(), ",\n") + "\n}\n"
}

// formatBibTeXAuthors formats an author list for BibTeX
// BibTeX format: "Last1, First1 and Last2, First2"
func formatBibTeXAuthors(authors []string) string {
	formatted := make([]string, 0, len(authors))
	for _, author := range authors {
		if strings.Contains(author, ",") {
			formatted = append(formatted, strings.TrimSpace(author))
			continue
		}
		parts := strings.Fields(author)
		switch {
		case len(parts) >= 2:
			formatted = append(formatted, fmt.Sprintf("%s, %s", parts[len(parts)-1], strings.Join(parts[:len(parts)-1], " ")))
		case len(parts) == 1:
			formatted = append(formatted, parts[0])
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeBibTeX escapes LaTeX special characters
func escapeBibTeX(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\textbackslash{}")
	for _, ch := range []string{"%", "&", "_", "$", "#"} {
		text = strings.ReplaceAll(text, ch, "\\"+ch)
	}
	return text
}

// GenerateBibTeXFile assigns citekeys and joins entries into a .bib document
func GenerateBibTeXFile(entries []Entry) string {
	var b strings.Builder
	b.WriteString("% BibTeX bibliography file\n")
	b.WriteString("% Generated by emolit from guessed citations\n\n")

	used := make(map[string]bool)
	for i, e := range entries {
		b.WriteString(GenerateBibTeXEntry(e, GenerateCitekey(e.Citation, used)))
		if i < len(entries)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
