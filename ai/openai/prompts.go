package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/rankit/ai"
)

const recognitionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "text": {"type": "string"},
          "label": {"type": "string"}
        },
        "required": ["text", "label"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entities"],
  "additionalProperties": false
}`

const recognitionPromptTemplate = `Find the named entities in the given search query and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- "text" is the entity exactly as written in the query.
- "label" must be exactly one of: %s.
- ORG is a company or organization. PRODUCT is a named product, service or app. LOCATION is a country, city or region.
- Do not label generic nouns, technologies you cannot name precisely, or verbs.
- List entities in the order they appear.
- If no entities can be identified, return "entities": [].

Example:
Input: "build a streaming app like Netflix for users in Brazil"
Output:
{
  "entities": [
    {"text":"Netflix","label":"ORG"},
    {"text":"Brazil","label":"LOCATION"}
  ]
}

Example (lowercase, informal):
Input: "how does spotify recommend songs"
Output:
{
  "entities": [
    {"text":"spotify","label":"ORG"}
  ]
}

Example (nothing to find):
Input: "tips for growing tomatoes"
Output:
{
  "entities": []
}`

// buildSystemPrompt creates the system prompt with the entity labels embedded.
func buildSystemPrompt() string {
	labels := make([]string, len(ai.EntityLabels))
	for i, l := range ai.EntityLabels {
		labels[i] = string(l)
	}
	return fmt.Sprintf(recognitionPromptTemplate,
		recognitionResponseSchema,
		strings.Join(labels, ", "))
}
