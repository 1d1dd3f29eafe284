package extract

import "strings"

// companyNamePrompt asks the model for a bracketed, quoted list so the
// response stays machine-parseable. The example responses pin the shape.
const companyNamePrompt = `**Task**: Extract companies name from the given Details question if possible. Adhere to the specific Rules and Example Response:
**Rules**:
- Return a list even if only one company is found
- Quote every company name
- If no company name is found, return empty list
- If multiple companies are found, return all of them
- Respond without any pre-amble

**Example Response**:
- ["Apple Inc"]
- ["Microsoft Corp", "Google", "Tesla Inc"]
- []

**Details**:
- Question: {question}

**Response**:`

func renderPrompt(question string) string {
	return strings.ReplaceAll(companyNamePrompt, "{question}", question)
}
