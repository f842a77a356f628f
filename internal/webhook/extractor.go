// Package webhook implements the request-time half of the adapter: deciding
// whether an inbound HTTP request is a Dialogflow fulfillment call for this
// agent, extracting it into the framework's neutral model, and formatting
// the framework's response back into the Dialogflow webhook shape.
package webhook

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MrWong99/dialogforge/internal/config"
	"github.com/MrWong99/dialogforge/pkg/assistant"
	"github.com/MrWong99/dialogforge/pkg/dialogflow"
)

// PlatformName is the adapter name reported in extractions.
const PlatformName = "apiai"

// ErrNoAuthHeaders is returned by [Extractor.Fits] when the adapter has no
// authentication headers configured. This is a deployment misconfiguration:
// without configured headers every request would have to be either trusted
// blindly or rejected silently, and neither is acceptable.
var ErrNoAuthHeaders = errors.New(
	"webhook: no authentication_headers configured; configure at least one secret header pair matching your Dialogflow fulfillment settings")

// Request is the adapter's view of one inbound HTTP request: the route path,
// the request headers, and the decoded webhook body (nil when the body was
// not valid JSON for the webhook schema).
type Request struct {
	Path   string
	Header http.Header
	Body   *dialogflow.WebhookRequest
}

// validation is the structured result of the inbound shape check.
type validation struct {
	valid  bool
	reason string
}

// Extractor recognises Dialogflow fulfillment requests and maps them into
// the framework's neutral extraction record.
type Extractor struct {
	adapter config.AdapterConfig
}

// NewExtractor creates an [Extractor] for the given adapter configuration.
func NewExtractor(adapter config.AdapterConfig) *Extractor {
	return &Extractor{adapter: adapter}
}

// Fits reports whether req is a well-formed, authenticated Dialogflow
// request for this adapter. Structural mismatches return (false, nil);
// authentication value mismatches return (false, nil) with a warning log.
// A missing authentication configuration returns [ErrNoAuthHeaders].
func (e *Extractor) Fits(req Request) (bool, error) {
	if v := e.validateShape(req); !v.valid {
		slog.Debug("request does not match dialogflow shape", "reason", v.reason)
		return false, nil
	}

	if len(e.adapter.AuthenticationHeaders) == 0 {
		return false, ErrNoAuthHeaders
	}
	for name, want := range e.adapter.AuthenticationHeaders {
		if headerValue(req.Header, name) != want {
			slog.Warn("request headers did not match configured authentication_headers; rejecting", "header", name)
			return false, nil
		}
	}

	slog.Debug("request matched for dialogflow")
	return true, nil
}

// validateShape checks the structural preconditions: correct route, a
// decoded body, a session identifier, a query result, and query text.
func (e *Extractor) validateShape(req Request) validation {
	switch {
	case req.Path != e.adapter.Route:
		return validation{reason: "path does not match configured route"}
	case req.Body == nil:
		return validation{reason: "body is not a dialogflow webhook request"}
	case req.Body.Session == "":
		return validation{reason: "missing session"}
	case req.Body.QueryResult == nil:
		return validation{reason: "missing queryResult"}
	case req.Body.QueryResult.QueryText == nil:
		return validation{reason: "missing queryText"}
	}
	return validation{valid: true}
}

// headerValue looks up a header by its exact, lowercased, uppercased, and
// canonical name. Header producers disagree on casing; the configured name
// must match regardless.
func headerValue(header http.Header, name string) string {
	for _, variant := range []string{name, strings.ToLower(name), strings.ToUpper(name)} {
		if values := header[variant]; len(values) > 0 {
			return values[0]
		}
	}
	return header.Get(name)
}

// Extract maps a request that [Extractor.Fits] accepted into the neutral
// extraction record.
func (e *Extractor) Extract(req Request) assistant.Extraction {
	body := req.Body
	spokenText := ""
	if body.QueryResult.QueryText != nil {
		spokenText = *body.QueryResult.QueryText
	}
	return assistant.Extraction{
		Platform:             PlatformName,
		SessionID:            body.Session,
		Intent:               extractIntent(body),
		Entities:             extractEntities(body),
		Language:             body.QueryResult.LanguageCode,
		SpokenText:           spokenText,
		AdditionalParameters: extractAdditionalParameters(body),
	}
}

// extractIntent derives the neutral intent: the reserved fallback display
// name (or a missing intent) maps to the generic unhandled intent, display
// names of generated generic intents reverse-resolve to their generic value,
// and everything else passes through as a named intent.
func extractIntent(body *dialogflow.WebhookRequest) assistant.Intent {
	if body.QueryResult.Intent == nil ||
		body.QueryResult.Intent.DisplayName == "" ||
		body.QueryResult.Intent.DisplayName == dialogflow.UnhandledIntentName {
		return assistant.Generic(assistant.GenericUnhandled)
	}
	displayName := body.QueryResult.Intent.DisplayName
	if generic, ok := dialogflow.GenericIntentByName(displayName); ok {
		return assistant.Generic(generic)
	}
	return assistant.NamedIntent(displayName)
}

// extractEntities copies the query parameters, dropping unset and
// empty-string values.
func extractEntities(body *dialogflow.WebhookRequest) map[string]any {
	entities := make(map[string]any, len(body.QueryResult.Parameters))
	for name, value := range body.QueryResult.Parameters {
		if value == nil || value == "" {
			continue
		}
		entities[name] = value
	}
	return entities
}

// extractAdditionalParameters passes through the originating integration's
// payload, defaulting to an empty map.
func extractAdditionalParameters(body *dialogflow.WebhookRequest) map[string]any {
	if body.OriginalDetectIntentRequest == nil || body.OriginalDetectIntentRequest.Payload == nil {
		return map[string]any{}
	}
	return body.OriginalDetectIntentRequest.Payload
}
