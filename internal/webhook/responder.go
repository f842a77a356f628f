package webhook

import (
	"strings"

	"github.com/MrWong99/dialogforge/pkg/assistant"
	"github.com/MrWong99/dialogforge/pkg/dialogflow"
)

// Responder formats the framework's neutral response into the Dialogflow
// webhook response body.
type Responder struct {
	// defaultDisplayIsVoice lets the voice message double as display text
	// when no chat bubbles are set. When false, display output is suppressed
	// explicitly instead.
	defaultDisplayIsVoice bool
}

// NewResponder creates a [Responder].
func NewResponder(defaultDisplayIsVoice bool) Responder {
	return Responder{defaultDisplayIsVoice: defaultDisplayIsVoice}
}

// Format builds the webhook response body. The voice message becomes
// fulfillmentText; chat bubbles, when present, become an explicit text
// fulfillment message so visual surfaces show them instead of the voice
// text.
func (r Responder) Format(response assistant.Response) dialogflow.WebhookResponse {
	body := dialogflow.WebhookResponse{}
	if response.VoiceMessage != "" {
		body.FulfillmentText = response.VoiceMessage
	}

	switch {
	case len(response.ChatBubbles) > 0:
		body.FulfillmentMessages = []dialogflow.FulfillmentMessage{
			{Text: &dialogflow.TextMessage{Text: []string{strings.Join(response.ChatBubbles, " ")}}},
		}
	case !r.defaultDisplayIsVoice && response.VoiceMessage != "":
		// Voice-only: present an empty display message so surfaces with a
		// screen don't echo the spoken text.
		body.FulfillmentMessages = []dialogflow.FulfillmentMessage{
			{Text: &dialogflow.TextMessage{Text: []string{""}}},
		}
	}
	return body
}
