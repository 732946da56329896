package cache

import "fmt"

// Key builders. Every mutating path invalidates the exact keys it affects;
// the previous system attempted wildcard deletes that silently matched
// nothing, so keys are enumerable by construction here.

// SlugUniquenessKey keys a cached uniqueness verdict for a normalized slug
func SlugUniquenessKey(entityType, slug string, excludeID int64) string {
	return fmt.Sprintf("slug:unique:%s:%s:%d", entityType, slug, excludeID)
}

// SlugUniquenessKeys returns every uniqueness key polarity that a slug
// change can have populated for the given entity and ids
func SlugUniquenessKeys(entityType, slug string, ids ...int64) []string {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, SlugUniquenessKey(entityType, slug, 0))
	for _, id := range ids {
		keys = append(keys, SlugUniquenessKey(entityType, slug, id))
	}
	return keys
}

// DailyCreateQuotaKey keys the per-admin, per-day product creation counter.
// day is formatted YYYY-MM-DD in UTC by the caller.
func DailyCreateQuotaKey(adminID int64, day string) string {
	return fmt.Sprintf("quota:create:product:%d:%s", adminID, day)
}
