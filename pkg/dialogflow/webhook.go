// Package dialogflow defines the Dialogflow (API.AI) wire formats this
// adapter speaks: the fulfillment webhook request/response bodies, the agent
// export file schemas produced by the generator, and the v2 REST bodies used
// for agent export/restore.
//
// Besides the schema structs, the package holds the fixed dictionary mapping
// generic framework intents to their Dialogflow display names. Everything
// else lives in the internal packages that produce and consume these types.
package dialogflow

// WebhookRequest is the body Dialogflow POSTs to the fulfillment webhook for
// every conversational turn.
type WebhookRequest struct {
	// ResponseID uniquely identifies this detect-intent response.
	ResponseID string `json:"responseId,omitempty"`

	// Session is the session path ("projects/<p>/agent/sessions/<id>").
	Session string `json:"session"`

	// QueryResult holds the recognition result for the turn.
	QueryResult *QueryResult `json:"queryResult"`

	// OriginalDetectIntentRequest carries the payload of the integration
	// that originated the request (e.g. the Google Assistant app request).
	OriginalDetectIntentRequest *OriginalDetectIntentRequest `json:"originalDetectIntentRequest,omitempty"`
}

// QueryResult is the per-turn recognition result inside a [WebhookRequest].
type QueryResult struct {
	// QueryText is the text the user said, as Dialogflow understood it. A
	// pointer so a body lacking the field entirely is distinguishable from
	// an empty transcription.
	QueryText *string `json:"queryText"`

	// Parameters holds the extracted entity values keyed by parameter name.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Intent identifies the matched intent.
	Intent *IntentRef `json:"intent,omitempty"`

	// IntentDetectionConfidence is the match confidence in [0, 1].
	IntentDetectionConfidence float64 `json:"intentDetectionConfidence,omitempty"`

	// LanguageCode is the language tag of the request (e.g. "en").
	LanguageCode string `json:"languageCode"`
}

// IntentRef names the intent matched for a turn.
type IntentRef struct {
	// Name is the intent's resource name.
	Name string `json:"name,omitempty"`

	// DisplayName is the intent name as configured in the agent.
	DisplayName string `json:"displayName"`
}

// OriginalDetectIntentRequest wraps the originating integration's payload.
type OriginalDetectIntentRequest struct {
	// Source names the originating integration (e.g. "google").
	Source string `json:"source,omitempty"`

	// Payload is the integration-specific request payload.
	Payload map[string]any `json:"payload,omitempty"`
}

// WebhookResponse is the body the fulfillment webhook returns to Dialogflow.
type WebhookResponse struct {
	// FulfillmentText is the plain-text response spoken/shown to the user.
	FulfillmentText string `json:"fulfillmentText,omitempty"`

	// FulfillmentMessages holds rich response messages. May be nil.
	FulfillmentMessages []FulfillmentMessage `json:"fulfillmentMessages,omitempty"`

	// Payload carries platform-specific response content. May be nil.
	Payload map[string]any `json:"payload,omitempty"`
}

// FulfillmentMessage is one rich response message in a [WebhookResponse].
type FulfillmentMessage struct {
	Text *TextMessage `json:"text,omitempty"`
}

// TextMessage is the plain-text variant of a [FulfillmentMessage].
type TextMessage struct {
	Text []string `json:"text"`
}
