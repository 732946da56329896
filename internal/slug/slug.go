package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EntityType names the entity namespace a slug is unique within
type EntityType string

const (
	EntityProduct     EntityType = "product"
	EntityCategory    EntityType = "category"
	EntityMarketplace EntityType = "marketplace"
)

// Bounds limits slug length per entity type
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds is used when no per-entity override is configured
var DefaultBounds = Bounds{Min: 3, Max: 100}

var (
	slugFormat   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	numericOnly  = regexp.MustCompile(`^[0-9]+$`)
	nonSlugRunes = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRuns   = regexp.MustCompile(`-{2,}`)

	accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// globalReserved blocks slugs that collide with system routes or generic
// words across every entity type. Purely numeric slugs are rejected
// separately because they would collide with numeric ids in URLs.
var globalReserved = map[string]bool{
	"admin":  true,
	"api":    true,
	"new":    true,
	"edit":   true,
	"delete": true,
	"login":  true,
	"logout": true,
	"search": true,
	"static": true,
	"assets": true,
}

// entityReserved layers entity-specific deny-list entries on the global list
var entityReserved = map[EntityType]map[string]bool{
	EntityProduct: {
		"product":  true,
		"products": true,
	},
	EntityCategory: {
		"category":   true,
		"categories": true,
		"all":        true,
	},
	EntityMarketplace: {
		"marketplace":  true,
		"marketplaces": true,
	},
}

// defaultStopWords are dropped by Generate when stop-word stripping is on
var defaultStopWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "or": true, "of": true,
	"for": true, "in": true, "on": true, "to": true, "with": true,
}

// Normalize lowers, strips accents, collapses every run of characters
// outside [a-z0-9-] into a single hyphen, and trims leading and trailing
// hyphens. Normalize(Normalize(x)) == Normalize(x) for all x.
func Normalize(raw string) string {
	lowered := strings.ToLower(raw)

	stripped, _, err := transform.String(accentStripper, lowered)
	if err != nil {
		// Fall back to the un-stripped text; the rune filter below still
		// guarantees a valid alphabet.
		stripped = lowered
	}

	s := nonSlugRunes.ReplaceAllString(stripped, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidateFormat checks the slug alphabet and length bounds
func ValidateFormat(s string, bounds Bounds) error {
	if len(s) < bounds.Min {
		return &FormatError{Slug: s, Rule: "min_length"}
	}
	if len(s) > bounds.Max {
		return &FormatError{Slug: s, Rule: "max_length"}
	}
	if !slugFormat.MatchString(s) {
		return &FormatError{Slug: s, Rule: "format"}
	}
	return nil
}

// IsReserved reports whether the slug is on the deny-list for the entity
// type. Purely numeric slugs are always reserved.
func IsReserved(s string, entityType EntityType) bool {
	if numericOnly.MatchString(s) {
		return true
	}
	if globalReserved[s] {
		return true
	}
	if extra, ok := entityReserved[entityType]; ok && extra[s] {
		return true
	}
	return false
}

// FormatError reports which shape rule a slug failed
type FormatError struct {
	Slug string
	Rule string
}

func (e *FormatError) Error() string {
	return "invalid slug " + e.Slug + ": " + e.Rule
}

// stripStopWords removes stop-words from the hyphen-separated slug,
// keeping the original when stripping would empty it
func stripStopWords(s string) string {
	words := strings.Split(s, "-")
	kept := words[:0]
	for _, w := range words {
		if !defaultStopWords[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return s
	}
	return strings.Join(kept, "-")
}

// capWords keeps at most n leading words of the hyphen-separated slug
func capWords(s string, n int) string {
	if n <= 0 {
		return s
	}
	words := strings.Split(s, "-")
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], "-")
}

// truncateAtWordBoundary shortens the slug to at most max bytes, cutting
// at the last full word that fits
func truncateAtWordBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndex(cut, "-"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.Trim(cut, "-")
}
