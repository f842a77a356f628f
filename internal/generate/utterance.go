package generate

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/MrWong99/dialogforge/pkg/dialogflow"
)

// Utterances support two mutually exclusive placeholder syntaxes:
//
//   - example syntax: "Hello {{world|entity1}}" — literal text with embedded
//     example values annotated by their entity placeholder name.
//   - template syntax: "hello {{entity1}}" — typed placeholders that
//     Dialogflow expands itself.
//
// The syntax is decided once, up front, by [parseUtterance]; the two
// resulting variants compile to training phrases independently.
var (
	// exampleSyntax detects the "{{value|alias}}" form anywhere in the string.
	exampleSyntax = regexp.MustCompile(`\{\{.+\|\w*\}\}`)

	// examplePlaceholder captures value and alias of one example placeholder.
	examplePlaceholder = regexp.MustCompile(`\{\{(.+?)\|(\w*)\}\}`)

	// templatePlaceholder captures the name of one template placeholder.
	templatePlaceholder = regexp.MustCompile(`\{\{(\w+)\}\}`)
)

// parsedUtterance is one utterance after syntax classification. Compiling
// resolves entity types and can fail with a *[MissingEntityTypeError].
type parsedUtterance interface {
	compile(resolver typeResolver) (dialogflow.Utterance, error)
}

// parseUtterance classifies an utterance string into its syntax variant.
// Plain text with no placeholders at all parses as a trivial example
// utterance with a single literal span.
func parseUtterance(utterance string) parsedUtterance {
	if !exampleSyntax.MatchString(utterance) {
		if templatePlaceholder.MatchString(utterance) {
			return templateUtterance{raw: utterance}
		}
		return exampleUtterance{spans: []exampleSpan{{text: utterance}}}
	}

	var spans []exampleSpan
	last := 0
	for _, match := range examplePlaceholder.FindAllStringSubmatchIndex(utterance, -1) {
		start, end := match[0], match[1]
		if literal := utterance[last:start]; strings.TrimSpace(literal) != "" {
			spans = append(spans, exampleSpan{text: literal})
		}
		spans = append(spans, exampleSpan{
			text:        utterance[match[2]:match[3]],
			alias:       utterance[match[4]:match[5]],
			placeholder: true,
		})
		last = end
	}
	if literal := utterance[last:]; strings.TrimSpace(literal) != "" {
		spans = append(spans, exampleSpan{text: literal})
	}
	return exampleUtterance{spans: spans}
}

// exampleUtterance is an utterance in example syntax: an ordered sequence of
// literal and placeholder spans. Whitespace-only literal spans are dropped
// at parse time.
type exampleUtterance struct {
	spans []exampleSpan
}

// exampleSpan is one span of an example utterance. For placeholder spans,
// text holds the example value and alias the entity placeholder name.
type exampleSpan struct {
	text        string
	alias       string
	placeholder bool
}

// compile emits one token per span, left to right. Placeholder spans carry
// the example value as user-defined text annotated with the resolved entity
// type; literal spans pass through.
func (u exampleUtterance) compile(resolver typeResolver) (dialogflow.Utterance, error) {
	tokens := make([]dialogflow.UtteranceToken, 0, len(u.spans))
	for _, span := range u.spans {
		if !span.placeholder {
			tokens = append(tokens, dialogflow.UtteranceToken{Text: span.text})
			continue
		}
		dataType, err := resolver.resolve(span.alias)
		if err != nil {
			return dialogflow.Utterance{}, err
		}
		tokens = append(tokens, dialogflow.UtteranceToken{
			Text:        span.text,
			Alias:       span.alias,
			Meta:        dataType,
			UserDefined: true,
		})
	}
	return dialogflow.Utterance{
		ID:         uuid.NewString(),
		Data:       tokens,
		IsTemplate: false,
		Count:      0,
	}, nil
}

// templateUtterance is an utterance in template syntax.
type templateUtterance struct {
	raw string
}

// compile replaces each "{{name}}" placeholder with "<type>:<name>" inline
// and emits the result as a single token.
func (u templateUtterance) compile(resolver typeResolver) (dialogflow.Utterance, error) {
	var resolveErr error
	text := templatePlaceholder.ReplaceAllStringFunc(u.raw, func(placeholder string) string {
		name := templatePlaceholder.FindStringSubmatch(placeholder)[1]
		dataType, err := resolver.resolve(name)
		if err != nil {
			if resolveErr == nil {
				resolveErr = err
			}
			return placeholder
		}
		return dataType + ":" + name
	})
	if resolveErr != nil {
		return dialogflow.Utterance{}, resolveErr
	}
	return dialogflow.Utterance{
		ID:         uuid.NewString(),
		Data:       []dialogflow.UtteranceToken{{Text: text}},
		IsTemplate: true,
		Count:      0,
	}, nil
}
