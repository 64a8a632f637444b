package core

import (
	"fmt"
	"strings"
)

// NormalizeQuery trims surrounding whitespace from a raw query string.
// Case is preserved: "Pizza" and "pizza" are distinct queries both for
// debounce comparison and for cache keys.
func NormalizeQuery(raw string) string {
	return strings.TrimSpace(raw)
}

// CacheKey derives the cache key for a search. Text searches are keyed by the
// normalized query plus location; nearby searches by location and radius
// alone. Coordinates are rounded to four decimals (~11 m) so that sub-jitter
// location differences map to the same key.
func CacheKey(query string, loc Location, radiusMeters int) string {
	if q := NormalizeQuery(query); q != "" {
		return fmt.Sprintf("text:%s|%.4f,%.4f", q, loc.Lat, loc.Lng)
	}
	return fmt.Sprintf("nearby:%.4f,%.4f|%d", loc.Lat, loc.Lng, radiusMeters)
}
