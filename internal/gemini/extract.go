package gemini

// ExtractJSONObject returns the first balanced JSON object substring in s.
// The model may wrap its JSON in prose or markdown code fences, so this
// scans for a '{' and tracks brace depth, honoring string literals and
// escape sequences so braces inside values do not miscount. Returns false
// when no complete object is present.
func ExtractJSONObject(s string) (string, bool) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			// Quotes in surrounding prose (depth 0) are not JSON strings.
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
