package diffview

import "strings"

// ParseHunk splits a hunk's raw content into classified, numbered lines.
//
// Lines are classified by their first byte: '+' addition, '-' deletion,
// ' ' context. Empty strings and lines with any other leading byte are
// dropped without error; dropped lines do not advance either counter.
// The parser is total over arbitrary strings and never panics.
func ParseHunk(hunk DiffHunk) []ParsedLine {
	raw := strings.Split(hunk.Content, "\n")
	parsed := make([]ParsedLine, 0, len(raw))

	oldNumber := hunk.OldStart
	newNumber := hunk.NewStart
	for _, line := range raw {
		if line == "" {
			continue
		}
		switch line[0] {
		case '+':
			parsed = append(parsed, ParsedLine{
				Kind:      LineAddition,
				Content:   line[1:],
				NewNumber: newNumber,
			})
			newNumber++
		case '-':
			parsed = append(parsed, ParsedLine{
				Kind:      LineDeletion,
				Content:   line[1:],
				OldNumber: oldNumber,
			})
			oldNumber++
		case ' ':
			parsed = append(parsed, ParsedLine{
				Kind:      LineContext,
				Content:   line[1:],
				OldNumber: oldNumber,
				NewNumber: newNumber,
			})
			oldNumber++
			newNumber++
		}
	}
	return parsed
}
