package compound

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ParseSynonyms parses an alias-shaped value into a deterministic list of
// unique, trimmed alias strings. It accepts the shapes that appear in raw
// catalog data: a plain string, a JSON-encoded array/object/string, a
// (possibly nested) slice, a map (values only), raw bytes, or anything
// stringable. Duplicate tokens collapse case-insensitively to the
// first-seen casing; first-seen order is preserved.
//
// The function never panics and never returns an error: malformed JSON
// and unknown shapes degrade to best-effort stringification, nil yields
// an empty list. It is idempotent: feeding its own output back in returns
// the same list.
func ParseSynonyms(value any) []string {
	seen := make(map[string]struct{})
	var ordered []string

	for _, raw := range flattenAlias(value, 0) {
		for _, token := range tokenizeSegment(raw, 0) {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			key := strings.ToLower(token)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			ordered = append(ordered, token)
		}
	}
	if ordered == nil {
		return []string{}
	}
	return ordered
}

// maxAliasDepth bounds recursion through nested containers and
// JSON-inside-JSON strings.
const maxAliasDepth = 16

// flattenAlias walks the closed set of accepted input shapes and yields
// the raw strings they contain, in order.
func flattenAlias(value any, depth int) []string {
	if value == nil || depth > maxAliasDepth {
		return nil
	}

	switch v := value.(type) {
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return nil
		}
		if strings.HasPrefix(text, "[") || strings.HasPrefix(text, "{") {
			if parsed, ok := decodeAliasJSON(text); ok {
				return flattenAlias(parsed, depth+1)
			}
		}
		return []string{text}
	case []byte:
		return flattenAlias(strings.ToValidUTF8(string(v), ""), depth+1)
	case []string:
		var out []string
		for _, item := range v {
			out = append(out, flattenAlias(item, depth+1)...)
		}
		return out
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, flattenAlias(item, depth+1)...)
		}
		return out
	case map[string]string:
		var out []string
		for _, key := range sortedKeys(v) {
			out = append(out, flattenAlias(v[key], depth+1)...)
		}
		return out
	case map[string]any:
		var out []string
		for _, key := range sortedKeysAny(v) {
			out = append(out, flattenAlias(v[key], depth+1)...)
		}
		return out
	case fmt.Stringer:
		return flattenAlias(v.String(), depth+1)
	default:
		text := strings.TrimSpace(fmt.Sprint(v))
		if text == "" {
			return nil
		}
		return []string{text}
	}
}

// decodeAliasJSON parses text that looks like a JSON array or object.
// A successful parse of a container or string shape is re-flattened;
// anything else falls back to the literal text.
func decodeAliasJSON(text string) (any, bool) {
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, false
	}
	switch parsed.(type) {
	case []any, map[string]any, string:
		return parsed, true
	case nil:
		return nil, false
	default:
		return fmt.Sprint(parsed), true
	}
}

// Map iteration order is random in Go; sorting the keys keeps the output
// deterministic across runs.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysAny(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// splitters that always terminate a token.
const hardDelimiters = ";|/\\+&"

// tokenizeSegment splits one flattened string into alias tokens.
// Parenthetical groups are alternative names, not notes: the text before,
// inside, and after the outermost parentheses are tokenized independently.
func tokenizeSegment(segment string, depth int) []string {
	cleaned := collapseWhitespace(segment)
	if cleaned == "" {
		return nil
	}

	if depth <= maxAliasDepth {
		open := strings.IndexByte(cleaned, '(')
		close := strings.LastIndexByte(cleaned, ')')
		if open >= 0 && close > open {
			var collected []string
			for _, part := range []string{cleaned[:open], cleaned[open+1 : close], cleaned[close+1:]} {
				if strings.TrimSpace(part) != "" {
					collected = append(collected, tokenizeSegment(part, depth+1)...)
				}
			}
			if len(collected) > 0 {
				return collected
			}
		}
	}

	runes := []rune(cleaned)
	var tokens []string
	var buf []rune

	emit := func() {
		if len(buf) == 0 {
			return
		}
		text := stripOuterQuotes(string(buf))
		buf = buf[:0]
		if text != "" {
			tokens = append(tokens, text)
		}
	}

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == ',':
			if isNumericComma(runes, i) {
				buf = append(buf, r)
			} else {
				emit()
			}
			i++
		case strings.ContainsRune(hardDelimiters, r):
			emit()
			i++
		case hasConnectorAt(runes, i, "or"):
			emit()
			i += 2
		case hasConnectorAt(runes, i, "and"):
			emit()
			i += 3
		default:
			buf = append(buf, r)
			i++
		}
	}
	emit()

	if len(tokens) == 0 {
		if text := stripOuterQuotes(cleaned); text != "" {
			return []string{text}
		}
		return nil
	}
	return tokens
}

// collapseWhitespace folds runs of whitespace (zero-width space included)
// into single spaces and trims the ends.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '​' {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

const quoteChars = "\"'`“”’"

// stripOuterQuotes trims matched-looking outer quote characters,
// repeatedly, until none remain.
func stripOuterQuotes(text string) string {
	text = strings.TrimSpace(text)
	for {
		runes := []rune(text)
		if len(runes) < 2 {
			return text
		}
		if !strings.ContainsRune(quoteChars, runes[0]) || !strings.ContainsRune(quoteChars, runes[len(runes)-1]) {
			return text
		}
		text = strings.TrimSpace(string(runes[1 : len(runes)-1]))
	}
}

// isNumericComma reports whether the comma at index i sits between digits
// (ignoring interior spaces), e.g. "1,3,7-trimethylxanthine".
func isNumericComma(runes []rune, i int) bool {
	prev := i - 1
	for prev >= 0 && unicode.IsSpace(runes[prev]) {
		prev--
	}
	next := i + 1
	for next < len(runes) && unicode.IsSpace(runes[next]) {
		next++
	}
	return prev >= 0 && next < len(runes) &&
		unicode.IsDigit(runes[prev]) && unicode.IsDigit(runes[next])
}

// hasConnectorAt reports whether the connector word ("or"/"and") occurs at
// index i as a standalone word: both sides must be a delimiter, whitespace,
// or the string edge, so "orange" and "sandalwood" are left intact.
func hasConnectorAt(runes []rune, i int, word string) bool {
	end := i + len(word)
	if end > len(runes) {
		return false
	}
	for j, c := range word {
		if unicode.ToLower(runes[i+j]) != c {
			return false
		}
	}
	return isConnectorBoundary(runes, i-1) && isConnectorBoundary(runes, end)
}

func isConnectorBoundary(runes []rune, i int) bool {
	if i < 0 || i >= len(runes) {
		return true
	}
	r := runes[i]
	return unicode.IsSpace(r) || r == ',' || r == '-' || r == '(' || r == ')' ||
		strings.ContainsRune(hardDelimiters, r)
}
