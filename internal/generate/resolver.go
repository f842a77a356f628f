package generate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/MrWong99/dialogforge/pkg/assistant"
)

// suggestionThreshold is the minimum Jaro-Winkler similarity for a known
// entity type to be offered as a "did you mean" candidate.
const suggestionThreshold = 0.8

// MissingEntityTypeError reports an entity placeholder whose logical type
// could not be mapped to any Dialogflow type. It is a build-time
// configuration error and aborts the generation run.
type MissingEntityTypeError struct {
	// Placeholder is the entity placeholder name used in utterances.
	Placeholder string

	// LogicalType is the logical entity-type name the placeholder maps to.
	LogicalType string

	// Suggestions lists similarly named known types, best match first.
	Suggestions []string
}

func (e *MissingEntityTypeError) Error() string {
	msg := fmt.Sprintf("generate: no dialogflow type configured for entity %q (as %q)", e.Placeholder, e.LogicalType)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf("; did you mean %q?", e.Suggestions[0])
	}
	return msg
}

// typeResolver resolves entity placeholder names to Dialogflow data types
// for one language's generation pass.
type typeResolver struct {
	// entityMapping maps placeholder names to logical type names.
	entityMapping assistant.EntityMapping

	// staticEntities maps logical type names to Dialogflow system types.
	staticEntities map[string]string

	// custom holds the current language's custom entity value lists, keyed
	// by logical type name.
	custom assistant.CustomEntityMapping
}

// resolve maps a placeholder name to its Dialogflow data type. Logical types
// with a custom value list and no system-type mapping resolve to the custom
// reference form "@<type>"; types with a system-type mapping resolve to that
// type. Anything else is a *[MissingEntityTypeError].
func (r typeResolver) resolve(placeholder string) (string, error) {
	logical := r.entityMapping[placeholder]

	_, isCustom := r.custom[logical]
	systemType, isStatic := r.staticEntities[logical]

	switch {
	case isCustom && !isStatic:
		return "@" + logical, nil
	case isStatic:
		return systemType, nil
	}
	return "", &MissingEntityTypeError{
		Placeholder: placeholder,
		LogicalType: logical,
		Suggestions: r.suggestionsFor(logical),
	}
}

// suggestionsFor ranks known logical type names by Jaro-Winkler similarity
// to the unresolved name and returns those above the threshold.
func (r typeResolver) suggestionsFor(logical string) []string {
	if logical == "" {
		return nil
	}

	type scored struct {
		name  string
		score float64
	}
	var candidates []scored
	seen := make(map[string]bool, len(r.staticEntities)+len(r.custom))
	for name := range r.staticEntities {
		seen[name] = true
	}
	for name := range r.custom {
		seen[name] = true
	}
	for name := range seen {
		score := matchr.JaroWinkler(strings.ToLower(logical), strings.ToLower(name), false)
		if score >= suggestionThreshold {
			candidates = append(candidates, scored{name: name, score: score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}
