package normalize

import "strings"

// Username returns the normalized form of a username suitable for storage
// and filter comparisons. Normalization currently trims surrounding
// whitespace; usernames stay case-sensitive because lookups are exact-match
// against the stored value.
func Username(u string) string {
	return strings.TrimSpace(u)
}
