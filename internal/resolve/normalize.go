package resolve

import "strings"

// imdbPrefix is the prefix the metadata catalog carries on IMDb identifiers.
const imdbPrefix = "tt"

// NormalizeForeignID converts a raw foreign identifier into canonical form by
// stripping exactly one leading "tt". Identifiers without the prefix are
// returned unchanged.
func NormalizeForeignID(raw string) string {
	return strings.TrimPrefix(raw, imdbPrefix)
}
