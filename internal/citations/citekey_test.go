package citations

import (
	"reflect"
	"testing"

	"github.com/Epistemic-Technology/emolit/models"
)

func TestGenerateCitekey(t *testing.T) {
	tests := []struct {
		name     string
		citation models.Citation
		want     string
	}{
		{
			name:     "single author with year",
			citation: models.Citation{Authors: []string{"Smith, John"}, Year: "2020"},
			want:     "smith2020",
		},
		{
			name:     "single author first-last format",
			citation: models.Citation{Authors: []string{"John Smith"}, Year: "2021"},
			want:     "smith2021",
		},
		{
			name:     "two authors on one guessed line",
			citation: models.Citation{Authors: []string{"Jane Doe, John Smith"}, Year: "2020"},
			want:     "doeSmith2020",
		},
		{
			name:     "three authors",
			citation: models.Citation{Authors: []string{"Jane Doe", "John Smith", "Ann Lee"}, Year: "2019"},
			want:     "doeEtAl2019",
		},
		{
			name:     "multi-part last name",
			citation: models.Citation{Authors: []string{"von Neumann, John"}},
			want:     "vonNeumann",
		},
		{
			name:     "no authors falls back to title word",
			citation: models.Citation{Title: "The Science of Shame", Year: "2018"},
			want:     "science2018",
		},
		{
			name:     "untitled without authors",
			citation: models.Citation{Title: "Untitled", Year: "2018"},
			want:     "ref2018",
		},
		{
			name:     "nothing at all",
			citation: models.Citation{Title: "Untitled"},
			want:     "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateCitekey(tt.citation, make(map[string]bool))
			if got != tt.want {
				t.Errorf("GenerateCitekey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateCitekey_Collisions(t *testing.T) {
	citation := models.Citation{Authors: []string{"Smith, John"}, Year: "2020"}
	existing := make(map[string]bool)

	want := []string{"smith2020", "smith2020a", "smith2020b"}
	for i, w := range want {
		if got := GenerateCitekey(citation, existing); got != w {
			t.Errorf("call %d: Expected %s, got %s", i, w, got)
		}
	}
	if !existing["smith2020b"] {
		t.Error("Expected generated key to be recorded")
	}
}

func TestSplitAuthors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{"last first kept together", []string{"Smith, John"}, []string{"Smith, John"}},
		{"comma separated full names", []string{"Jane Doe, John Smith"}, []string{"Jane Doe", "John Smith"}},
		{"and separator", []string{"Jane Doe and John Smith"}, []string{"Jane Doe", "John Smith"}},
		{"semicolons and ampersand", []string{"Doe, Jane; Smith, John & Ann Lee"}, []string{"Doe, Jane", "Smith, John", "Ann Lee"}},
		{"multiple lines", []string{"Jane Doe", "John Smith"}, []string{"Jane Doe", "John Smith"}},
		{"particle surname", []string{"von Neumann, John"}, []string{"von Neumann, John"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitAuthors(tt.lines)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSanitizeCitekey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"smith2020", "smith2020"},
		{"o'brien2020", "obrien2020"},
		{"2020", "ref2020"},
		{"!!!", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := sanitizeCitekey(tt.input); got != tt.want {
				t.Errorf("sanitizeCitekey(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
