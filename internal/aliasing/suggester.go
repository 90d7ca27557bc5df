package aliasing

import (
	"sort"
	"strings"
	"unicode"
)

type (
	// FieldUsage is one distinct stored spelling of a level field together
	// with the number of stored levels using it.
	FieldUsage struct {
		// Value is the stored spelling, already folded.
		Value string

		// Count is the number of live level records using it.
		Count int
	}

	// SuggestedAlias proposes a .kindb.yaml alias entry derived from stored
	// spellings that collapse to the same skeleton. Suggestions are advisory:
	// an operator reviews them before merging records.
	SuggestedAlias struct {
		// Field is the level field the entry applies to: "method" or "basis".
		Field string

		// Alias is the minority spelling to map away.
		Alias string

		// Canonical is the majority spelling to map to.
		Canonical string

		// ResolvesCount is the number of stored levels the entry would remap.
		ResolvesCount int
	}
)

// Field names aliases apply to.
const (
	FieldMethod = "method"
	FieldBasis  = "basis"
)

// skeleton reduces a spelling to its lowercase letters and digits, the form
// under which "wb97xd" and "wb97x-d" collide.
func skeleton(value string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// SuggestAliases inspects the distinct stored spellings of one level field
// and proposes alias entries collapsing likely spelling variants.
//
// Algorithm:
//  1. Group spellings by skeleton; a group of one spelling needs no alias.
//  2. Within a group, the spelling used by the most levels is canonical
//     (ties break toward the longer, then lexicographically smaller one).
//  3. Every other spelling in the group becomes one suggested entry.
//  4. Sort by ResolvesCount descending (most impactful first).
//
// Example:
//
//	usages := []FieldUsage{
//	    {Value: "wb97x-d", Count: 41},
//	    {Value: "wb97xd", Count: 3},
//	}
//	SuggestAliases(FieldMethod, usages)
//	// → [{Field: "method", Alias: "wb97xd", Canonical: "wb97x-d", ResolvesCount: 3}]
func SuggestAliases(field string, usages []FieldUsage) []SuggestedAlias {
	if len(usages) == 0 {
		return nil
	}

	groups := make(map[string][]FieldUsage)

	for _, usage := range usages {
		if usage.Value == "" || usage.Count <= 0 {
			continue
		}

		key := skeleton(usage.Value)
		if key == "" {
			continue
		}

		groups[key] = append(groups[key], usage)
	}

	suggestions := make([]SuggestedAlias, 0)

	for _, group := range groups {
		if len(group) < 2 {
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			if group[i].Count != group[j].Count {
				return group[i].Count > group[j].Count
			}

			if len(group[i].Value) != len(group[j].Value) {
				return len(group[i].Value) > len(group[j].Value)
			}

			return group[i].Value < group[j].Value
		})

		canonical := group[0].Value

		for _, variant := range group[1:] {
			suggestions = append(suggestions, SuggestedAlias{
				Field:         field,
				Alias:         variant.Value,
				Canonical:     canonical,
				ResolvesCount: variant.Count,
			})
		}
	}

	sortSuggestions(suggestions)

	return suggestions
}

// SuggestLevelAliases runs suggestion over both alias-bearing level fields
// and returns one combined, impact-ordered list.
func SuggestLevelAliases(methods, bases []FieldUsage) []SuggestedAlias {
	suggestions := SuggestAliases(FieldMethod, methods)
	suggestions = append(suggestions, SuggestAliases(FieldBasis, bases)...)

	sortSuggestions(suggestions)

	return suggestions
}

// FilterResolved drops suggestions the resolver already covers, so the
// output only contains entries not yet in the configuration file.
func FilterResolved(resolver *Resolver, suggestions []SuggestedAlias) []SuggestedAlias {
	if resolver == nil || resolver.AliasCount() == 0 {
		return suggestions
	}

	kept := make([]SuggestedAlias, 0, len(suggestions))

	for _, suggestion := range suggestions {
		resolved := suggestion.Alias

		switch suggestion.Field {
		case FieldMethod:
			resolved = resolver.CanonicalMethod(suggestion.Alias)
		case FieldBasis:
			resolved = resolver.CanonicalBasis(suggestion.Alias)
		}

		if resolved != suggestion.Alias {
			continue
		}

		kept = append(kept, suggestion)
	}

	return kept
}

func sortSuggestions(suggestions []SuggestedAlias) {
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].ResolvesCount != suggestions[j].ResolvesCount {
			return suggestions[i].ResolvesCount > suggestions[j].ResolvesCount
		}

		return suggestions[i].Alias < suggestions[j].Alias
	})
}
