// Package textmatch provides substring matching and substitution for file
// names, plus the legality rules every planned destination name must pass.
package textmatch

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest file name accepted, in characters.
const MaxNameLength = 255

// ForbiddenChars are the characters no destination name may contain.
const ForbiddenChars = `<>:"/\|?*`

// SanitizeFallback replaces names that sanitize down to nothing.
const SanitizeFallback = "unnamed"

var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// Contains reports whether text contains keyword. An empty keyword always matches.
func Contains(text, keyword string, caseSensitive bool) bool {
	if keyword == "" {
		return true
	}
	if caseSensitive {
		return strings.Contains(text, keyword)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(keyword))
}

// Replace substitutes every non-overlapping occurrence of old in text.
// An empty old returns text unchanged. The case-insensitive form searches
// with a case-folding pattern so text outside the matches keeps its casing.
func Replace(text, old, new string, caseSensitive bool) string {
	return replaceN(text, old, new, caseSensitive, -1)
}

// ReplaceOnce is Replace limited to the first occurrence.
func ReplaceOnce(text, old, new string, caseSensitive bool) string {
	return replaceN(text, old, new, caseSensitive, 1)
}

func replaceN(text, old, new string, caseSensitive bool, n int) string {
	if old == "" {
		return text
	}
	if caseSensitive {
		return strings.Replace(text, old, new, n)
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(old))
	matches := re.FindAllStringIndex(text, n)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		b.WriteString(new)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// IsValidName checks a file name against the portable naming rules.
// On failure the second return value explains why.
func IsValidName(name string) (bool, string) {
	if name == "" {
		return false, "file name cannot be empty"
	}
	if i := strings.IndexAny(name, ForbiddenChars); i >= 0 {
		return false, fmt.Sprintf("file name contains invalid character: %c", name[i])
	}
	if strings.HasSuffix(name, " ") || strings.HasSuffix(name, ".") {
		return false, "file name cannot end with space or dot"
	}
	stem := strings.ToUpper(strings.SplitN(name, ".", 2)[0])
	if reservedNames[stem] {
		return false, fmt.Sprintf("file name is a reserved device name: %s", stem)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return false, fmt.Sprintf("file name exceeds %d characters", MaxNameLength)
	}
	return true, ""
}

// Sanitize replaces forbidden characters with an underscore, strips trailing
// spaces and dots, and falls back to SanitizeFallback when nothing is left.
// Planners never call it; invalid names are skipped there instead.
func Sanitize(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(ForbiddenChars, r) {
			return '_'
		}
		return r
	}, name)
	cleaned = strings.TrimRight(cleaned, " .")
	if cleaned == "" {
		return SanitizeFallback
	}
	return cleaned
}
