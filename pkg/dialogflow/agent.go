package dialogflow

import "github.com/MrWong99/dialogforge/pkg/assistant"

// Intent is one intent definition in the agent export format, written to
// intents/<name>.json.
type Intent struct {
	// Templates and UserSays are legacy API.AI keys. Only the fallback
	// intent document carries them, always empty.
	Templates []string `json:"templates,omitzero"`
	UserSays  []string `json:"userSays,omitzero"`

	// ID is a fresh UUID assigned at generation time.
	ID string `json:"id"`

	// Name is the intent's display name.
	Name string `json:"name"`

	// Auto enables Dialogflow's automatic (ML) matching for this intent.
	Auto bool `json:"auto"`

	// Contexts lists required input contexts. Always empty for generated
	// intents.
	Contexts []string `json:"contexts"`

	// Responses holds the intent's response blocks. Generated intents carry
	// exactly one.
	Responses []IntentResponse `json:"responses"`

	// Priority is the intent's matching priority.
	Priority int `json:"priority,omitempty"`

	// WebhookUsed routes matched turns to the fulfillment webhook.
	WebhookUsed bool `json:"webhookUsed"`

	// WebhookForSlotFilling enables webhook calls during slot filling.
	WebhookForSlotFilling bool `json:"webhookForSlotFilling"`

	// LastUpdate is the generation timestamp in unix seconds.
	LastUpdate int64 `json:"lastUpdate,omitempty"`

	// FallbackIntent marks the agent's catch-all intent.
	FallbackIntent bool `json:"fallbackIntent"`

	// Events lists the platform events that trigger this intent directly.
	Events []Event `json:"events"`
}

// IntentResponse is one response block of an [Intent].
type IntentResponse struct {
	// ResetContexts clears all contexts when the intent matches.
	ResetContexts bool `json:"resetContexts"`

	// Action is the action name reported to the webhook. Only the fallback
	// intent sets it ("input.unknown").
	Action string `json:"action,omitempty"`

	// AffectedContexts lists output contexts. Always empty for generated
	// intents.
	AffectedContexts []string `json:"affectedContexts"`

	// Parameters declares the intent's slots.
	Parameters []Parameter `json:"parameters"`

	// Messages holds static response messages. Generated intents answer via
	// webhook, so these stay empty.
	Messages []Message `json:"messages"`

	// DefaultResponsePlatforms selects platforms using the default response.
	// Regular intent documents carry it empty; the fallback document omits
	// it.
	DefaultResponsePlatforms map[string]bool `json:"defaultResponsePlatforms,omitzero"`

	// Speech holds static speech responses. Regular intent documents carry
	// it empty; the fallback document omits it.
	Speech []string `json:"speech,omitzero"`
}

// Message is one static response message of an [IntentResponse].
type Message struct {
	// Type is the Dialogflow message type tag (0 = text).
	Type int `json:"type"`

	// Lang is the message's language tag.
	Lang string `json:"lang,omitempty"`

	// Speech holds the message's text variants.
	Speech []string `json:"speech"`
}

// Parameter declares one slot of an intent.
type Parameter struct {
	// ID is a fresh UUID assigned at generation time.
	ID string `json:"id"`

	// Name is the slot name, matching the placeholder in utterances.
	Name string `json:"name"`

	// Required marks the slot as mandatory for the intent.
	Required bool `json:"required"`

	// Value is the slot reference expression ("$<name>").
	Value string `json:"value"`

	// IsList marks the slot as accepting multiple values.
	IsList bool `json:"isList"`

	// DataType is the resolved entity type ("@sys.number", "@myType", ...).
	DataType string `json:"dataType"`
}

// Event names one platform event attached to an intent.
type Event struct {
	Name string `json:"name"`
}

// Utterance is one training phrase in the agent export format. The
// intents/<name>_usersays_<lang>.json files hold arrays of these.
type Utterance struct {
	// ID is a fresh UUID assigned at generation time.
	ID string `json:"id"`

	// Data is the ordered token sequence making up the phrase.
	Data []UtteranceToken `json:"data"`

	// IsTemplate distinguishes template-mode phrases (inline-typed
	// placeholders) from example-mode phrases (annotated literal spans).
	IsTemplate bool `json:"isTemplate"`

	// Count is the phrase's usage count. Always zero at generation time.
	Count int `json:"count"`
}

// UtteranceToken is one span of an [Utterance]: either literal text or an
// annotated entity example.
type UtteranceToken struct {
	// Text is the span's literal content.
	Text string `json:"text"`

	// Alias is the entity placeholder name for annotated spans.
	Alias string `json:"alias,omitempty"`

	// Meta is the resolved entity type for annotated spans.
	Meta string `json:"meta,omitempty"`

	// UserDefined marks spans annotated by the developer rather than plain
	// text.
	UserDefined bool `json:"userDefined"`
}

// Entity is one custom entity type definition, written to
// entities/<name>.json. Its per-language value lists live in separate
// entities/<name>_entries_<lang>.json files holding [assistant.Entry]
// arrays.
type Entity struct {
	// ID is a fresh UUID assigned at generation time.
	ID string `json:"id"`

	// Name is the entity type name.
	Name string `json:"name"`

	// IsOverridable allows agent-level overrides of this type.
	IsOverridable bool `json:"isOverridable"`

	// IsEnum restricts matches to exact values. Generated types allow
	// synonyms, so this is always false.
	IsEnum bool `json:"isEnum"`

	// AutomatedExpansion lets Dialogflow match values outside the list.
	// Always false for generated types.
	AutomatedExpansion bool `json:"automatedExpansion"`
}

// EntityEntries is the content of one entities/<name>_entries_<lang>.json
// file.
type EntityEntries []assistant.Entry

// PackageManifest is the package.json stamped into every generated agent
// bundle.
type PackageManifest struct {
	Version string `json:"version"`
}

// RestoreAgentRequest is the body of the v2 agent:restore call.
type RestoreAgentRequest struct {
	// AgentContent is the base64-encoded agent zip.
	AgentContent string `json:"agentContent"`
}

// ExportAgentOperation is the (completed) long-running operation returned by
// the v2 agent:export call.
type ExportAgentOperation struct {
	// Name is the operation's resource name.
	Name string `json:"name"`

	// Done reports operation completion.
	Done bool `json:"done"`

	// Response holds the export result once done.
	Response *ExportAgentResponse `json:"response,omitempty"`
}

// ExportAgentResponse is the result payload of a completed agent export.
type ExportAgentResponse struct {
	// AgentContent is the base64-encoded agent zip.
	AgentContent string `json:"agentContent"`
}
