package llm

import (
	"fmt"
	"strings"
)

// ExtractJSONObject pulls the first balanced JSON object out of a model
// completion. Models tend to wrap JSON in markdown fences or surround it with
// prose, so the raw completion cannot be decoded directly.
func ExtractJSONObject(text string) ([]byte, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.Trim(text, "`")
		text = strings.TrimSpace(strings.TrimPrefix(text, "json"))
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}

		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return []byte(text[start : i+1]), nil
				}
			}
		}
	}

	return nil, fmt.Errorf("unbalanced JSON object in response")
}
