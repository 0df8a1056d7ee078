package llm

import (
	"encoding/json"
	"strings"

	"github.com/Epistemic-Technology/emolit/models"
)

const summaryPromptTemplate = `
You are a therapist and science communicator writing for teens and young adults who are new to emotional awareness.
Your task is to create an accessible explanation of the research paper excerpt about "{concept_name}".

Instructions:
1. Use SIMPLE LANGUAGE that everyone can understand. Avoid technical jargon and complex terms.
2. Structure your response as JSON with the following fields: "title", "friendly_definition", "real_life_example", "often_confused_with", "research_insight", "personal_check_in".
3. Ensure the "title" is SHORT, CLEAR, and WRITTEN IN EVERYDAY LANGUAGE.
4. Respond with STRICT JSON only. Keep the whole response under 150 words and answer only the 6 fields.

Fields to Fill:
- Title: A simple, engaging title summarizing the emotion in everyday terms (max 8 words).
- Friendly Definition: What is {concept_name} in everyday language? How does it feel in your body and mind?
- Real-Life Example: Share one situation where teens or young adults might experience this emotion.
- Often Confused With: How might people misunderstand this feeling or mistake it for something else?
- Research Insight: Share one key finding from the paper that helps understand this emotion, explained simply.
- Personal Check-In: Offer a thoughtful question that helps someone recognize and reflect on this in their own life.

Excerpt:
{text}

Citation:
{citation}
`

// Truncate returns at most maxChars runes of text
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i]
		}
		n++
	}
	return text
}

// BuildPrompt renders the summary prompt. The excerpt must already be truncated.
func BuildPrompt(excerpt, conceptName string, citation models.Citation) (string, error) {
	citationJSON, err := json.Marshal(citation)
	if err != nil {
		return "", err
	}
	// single pass, so placeholders inside the excerpt are left alone
	r := strings.NewReplacer(
		"{concept_name}", conceptName,
		"{text}", excerpt,
		"{citation}", string(citationJSON),
	)
	return r.Replace(summaryPromptTemplate), nil
}
