package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	pdfExt        = ".pdf"
	summarySuffix = "_summary.json"
)

var titleCaser = cases.Title(language.Und)

// ConceptName derives the concept label from a filename such as
// "01_Fear_And_Anxiety.pdf": the first underscore segment is an ordinal and
// is dropped, the rest are joined with spaces and title-cased. A name with no
// underscore keeps its whole stem.
func ConceptName(filename string) string {
	parts := strings.Split(Stem(filename), "_")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return titleCaser.String(strings.Join(parts, " "))
}

// Stem strips the directory and a case-insensitive ".pdf" extension
func Stem(filename string) string {
	base := filepath.Base(filename)
	if ext := filepath.Ext(base); strings.EqualFold(ext, pdfExt) {
		return base[:len(base)-len(ext)]
	}
	return base
}

// OutputName is the summary filename written for an input file
func OutputName(filename string) string {
	return Stem(filename) + summarySuffix
}

// ListPDFs returns the names of regular entries in dir ending in ".pdf" in
// any case, in lexical order.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), pdfExt) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
