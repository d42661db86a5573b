// Package scoring reconciles free-form model text against structured or
// textual ground truth and yields a score in [0, 1].
package scoring

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlockRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ExtractJSON pulls a JSON value out of model text. Search order: fenced
// code blocks, then the earliest first-to-last bracket span, then the whole
// text. The first successful parse wins.
func ExtractJSON(text string) (any, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	for _, m := range fencedBlockRe.FindAllStringSubmatch(text, -1) {
		if v, ok := tryParse(m[1]); ok {
			return v, true
		}
	}

	if span := bracketSpan(text); span != "" {
		if v, ok := tryParse(span); ok {
			return v, true
		}
	}

	return tryParse(text)
}

func tryParse(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// bracketSpan selects the earlier of the {…} and […] first-to-last spans.
func bracketSpan(text string) string {
	startObj, endObj := strings.Index(text, "{"), strings.LastIndex(text, "}")
	startArr, endArr := strings.Index(text, "["), strings.LastIndex(text, "]")

	hasObj := startObj != -1 && endObj > startObj
	hasArr := startArr != -1 && endArr > startArr

	switch {
	case hasObj && hasArr:
		if startArr < startObj {
			return text[startArr : endArr+1]
		}
		return text[startObj : endObj+1]
	case hasObj:
		return text[startObj : endObj+1]
	case hasArr:
		return text[startArr : endArr+1]
	}
	return ""
}

// parseValue normalizes a ground-truth or response value for comparison:
// strings are parsed as JSON when possible, otherwise trimmed; non-strings
// pass through unchanged.
func parseValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if parsed, ok := ExtractJSON(s); ok {
		return parsed
	}
	return strings.TrimSpace(s)
}
