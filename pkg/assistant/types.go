package assistant

import "context"

// IntentConfiguration describes one framework-level intent for one language:
// the intent itself, the example phrases that trigger it, and the entity
// placeholders those phrases reference.
type IntentConfiguration struct {
	// Intent is the intent this configuration belongs to.
	Intent Intent

	// Utterances lists example phrases, possibly containing entity
	// placeholders in "{{name}}" or "{{value|name}}" form.
	Utterances []string

	// Entities lists the placeholder names referenced by the utterances.
	Entities []string
}

// EntityMapping maps an entity placeholder name used in utterances to the
// logical entity-type name it extracts. The mapping is flat, not
// per-language.
type EntityMapping map[string]string

// Entry is one value of a custom entity type together with its synonyms.
type Entry struct {
	// Value is the canonical entity value.
	Value string `json:"value"`

	// Synonyms lists alternative phrasings resolving to Value. May be nil.
	Synonyms []string `json:"synonyms,omitempty"`
}

// CustomEntityMapping maps a logical entity-type name to its value list for
// one language. Types listed here that the platform does not provide
// natively are generated as custom (platform-local) entity types.
type CustomEntityMapping map[string][]Entry

// Extraction is the platform-neutral record an adapter derives from one
// inbound platform request. The framework routes on it without knowing
// which platform produced it.
type Extraction struct {
	// Platform names the adapter that produced this extraction.
	Platform string

	// SessionID is the platform's conversation/session identifier.
	SessionID string

	// Intent is the recognised intent.
	Intent Intent

	// Entities holds the extracted slot values keyed by placeholder name.
	// Values the platform reported as unset or empty are not included.
	Entities map[string]any

	// Language is the request's language tag (e.g. "en").
	Language string

	// SpokenText is the raw text the user said, as the platform understood it.
	SpokenText string

	// AdditionalParameters carries the platform's optional original-request
	// payload. Never nil; empty when the platform sent none.
	AdditionalParameters map[string]any
}

// Response is the platform-neutral result of handling one conversational
// turn. Adapters format it into their platform's response shape.
type Response struct {
	// VoiceMessage is the text to speak to the user. Empty means no voice
	// output.
	VoiceMessage string

	// ChatBubbles holds display-only text fragments for platforms with a
	// visual surface. May be nil.
	ChatBubbles []string
}

// Dispatcher handles one extracted conversational turn. It is implemented by
// the host framework; adapters call it between extraction and response
// formatting.
type Dispatcher interface {
	Dispatch(ctx context.Context, extraction Extraction) (Response, error)
}

// DispatcherFunc adapts a plain function into a [Dispatcher].
type DispatcherFunc func(ctx context.Context, extraction Extraction) (Response, error)

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, extraction Extraction) (Response, error) {
	return f(ctx, extraction)
}
