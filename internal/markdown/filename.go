package markdown

import "strings"

// maxFilenameLen caps sanitized filenames so deep category paths stay
// within filesystem limits.
const maxFilenameLen = 200

// SanitizeFilename converts a page title into a safe filename: invalid
// characters become underscores, leading/trailing dots and spaces are
// trimmed, and the result is capped at 200 runes. An empty result
// becomes "untitled".
func SanitizeFilename(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		return r
	}, title)

	name = strings.Trim(name, ". ")

	runes := []rune(name)
	if len(runes) > maxFilenameLen {
		name = string(runes[:maxFilenameLen])
	}

	if name == "" {
		return "untitled"
	}
	return name
}
