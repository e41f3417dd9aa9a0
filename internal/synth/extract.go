package synth

// ExtractJSON returns the first balanced top-level JSON object embedded in
// text. Models wrap output in prose or code fences often enough that a plain
// unmarshal of the whole response is not workable; the scan is string-aware
// so braces inside JSON strings do not unbalance it.
func ExtractJSON(text string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		}
	}

	if start < 0 {
		return "", &ExtractionError{Detail: "no opening brace"}
	}
	return "", &ExtractionError{Detail: "unbalanced braces"}
}
