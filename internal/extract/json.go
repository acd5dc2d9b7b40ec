package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy attempts to pull one JSON value out of free text. Strategies are
// pure functions so each can be tested in isolation; JSON composes them
// first-success-wins.
type Strategy func(text string) (json.RawMessage, bool)

// Strategies is the fallback chain applied to model output, cheapest first.
var Strategies = []Strategy{
	Direct,
	FencedBlock,
	BalancedBraces,
	Repaired,
}

// JSON extracts the first JSON value found in text, trying each strategy in
// order. ok is false when every strategy fails; callers supply their own
// fallback value in that case; a malformed model response must never
// propagate as a failure.
func JSON(text string) (json.RawMessage, bool) {
	for _, strategy := range Strategies {
		if raw, ok := strategy(text); ok {
			return raw, true
		}
	}
	return nil, false
}

// fencedRegex matches a triple-backtick code block with an optional json
// language tag and captures its body.
var fencedRegex = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// Direct parses the entire trimmed text as JSON.
func Direct(text string) (json.RawMessage, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}

// FencedBlock extracts the first fenced code block and parses its contents.
func FencedBlock(text string) (json.RawMessage, bool) {
	if !strings.Contains(text, "```") {
		return nil, false
	}
	matches := fencedRegex.FindStringSubmatch(text)
	if len(matches) < 2 {
		return nil, false
	}
	candidate := strings.TrimSpace(matches[1])
	if !json.Valid([]byte(candidate)) {
		return nil, false
	}
	return json.RawMessage(candidate), true
}

// BalancedBraces scans from each opening brace for its matching close,
// tracking string context and escapes so braces inside quoted values do not
// miscount, and returns the first span that validates.
func BalancedBraces(text string) (json.RawMessage, bool) {
	for _, open := range []byte{'{', '['} {
		if raw, ok := scanBalanced(text, open); ok {
			return raw, true
		}
	}
	return nil, false
}

func scanBalanced(text string, open byte) (json.RawMessage, bool) {
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}
	for i := 0; i < len(text); i++ {
		if text[i] != open {
			continue
		}
		level := 0
		inString := false
		escaped := false
		for j := i; j < len(text); j++ {
			c := text[j]
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = !inString
			case open:
				if !inString {
					level++
				}
			case closing:
				if !inString {
					level--
					if level == 0 {
						candidate := text[i : j+1]
						if json.Valid([]byte(candidate)) {
							return json.RawMessage(candidate), true
						}
						j = len(text) // abandon this opening position
					}
				}
			}
		}
	}
	return nil, false
}

// trailingCommaRegex matches a comma directly before a closing brace or
// bracket, which models emit often and encoding/json rejects.
var trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)

// smartQuoteReplacer normalizes typographic quotes to straight ASCII ones.
var smartQuoteReplacer = strings.NewReplacer(
	"“", `"`, // left double
	"”", `"`, // right double
	"‘", "'", // left single
	"’", "'", // right single
)

// Repaired takes the outermost brace span, strips trailing commas and
// normalizes smart quotes, then makes one more parse attempt.
func Repaired(text string) (json.RawMessage, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, false
	}
	candidate := text[start : end+1]
	candidate = smartQuoteReplacer.Replace(candidate)
	candidate = trailingCommaRegex.ReplaceAllString(candidate, "$1")
	if !json.Valid([]byte(candidate)) {
		return nil, false
	}
	return json.RawMessage(candidate), true
}
