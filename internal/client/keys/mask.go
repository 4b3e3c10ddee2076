package keys

import "strings"

const (
	visiblePrefix = 8
	visibleSuffix = 4
	// Placeholder replaces each hidden character.
	Placeholder = "•"
)

// Mask shows the first 8 and last 4 characters of key and replaces the
// interior with one Placeholder per hidden character. Keys shorter than 12
// characters get no placeholder at all; the placeholder span never goes
// negative.
func Mask(key string) string {
	r := []rune(key)
	n := len(r)

	prefix := r[:min(visiblePrefix, n)]
	suffix := r[max(0, n-visibleSuffix):]
	hidden := max(0, n-visiblePrefix-visibleSuffix)

	return string(prefix) + strings.Repeat(Placeholder, hidden) + string(suffix)
}
