package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrWong99/dialogforge/internal/config"
	"github.com/MrWong99/dialogforge/internal/observe"
	"github.com/MrWong99/dialogforge/pkg/assistant"
	"github.com/MrWong99/dialogforge/pkg/dialogflow"
)

// maxBodyBytes caps the accepted webhook request body size.
const maxBodyBytes = 1 << 20

// Handler serves the Dialogflow fulfillment route: it authenticates the
// request via [Extractor.Fits], extracts it, dispatches the turn to the
// framework, and writes the formatted response.
type Handler struct {
	extractor  *Extractor
	responder  Responder
	dispatcher assistant.Dispatcher
	metrics    *observe.Metrics
}

// HandlerOption configures a [Handler].
type HandlerOption func(*Handler)

// WithMetrics sets the metrics instance request telemetry is recorded to.
func WithMetrics(m *observe.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler creates a webhook [Handler] for the given adapter configuration
// and dispatcher.
func NewHandler(adapter config.AdapterConfig, dispatcher assistant.Dispatcher, opts ...HandlerOption) *Handler {
	h := &Handler{
		extractor:  NewExtractor(adapter),
		responder:  NewResponder(adapter.DefaultDisplayIsVoice),
		dispatcher: dispatcher,
	}
	for _, o := range opts {
		o(h)
	}
	if h.metrics == nil {
		h.metrics = observe.Default()
	}
	return h
}

// ServeHTTP implements [http.Handler].
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := "error"
	defer func() {
		h.metrics.WebhookRequests.Add(r.Context(), 1,
			metric.WithAttributes(attribute.String("outcome", outcome)))
		h.metrics.WebhookDuration.Record(r.Context(), time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		outcome = "rejected"
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := Request{Path: r.URL.Path, Header: r.Header, Body: decodeBody(r)}

	ok, err := h.extractor.Fits(req)
	if err != nil {
		slog.Error("webhook misconfigured", "err", err)
		http.Error(w, "adapter misconfigured", http.StatusInternalServerError)
		return
	}
	if !ok {
		outcome = "rejected"
		http.Error(w, "request does not match this agent", http.StatusForbidden)
		return
	}

	extraction := h.extractor.Extract(req)
	response, err := h.dispatcher.Dispatch(r.Context(), extraction)
	if err != nil {
		slog.Error("dispatch failed", "intent", extraction.Intent.String(), "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.responder.Format(response)); err != nil {
		slog.Error("write response failed", "err", err)
		return
	}
	outcome = "matched"
}

// decodeBody parses the request body as a Dialogflow webhook request.
// Returns nil when the body is absent or not valid JSON; the shape check in
// [Extractor.Fits] treats that as a structural mismatch.
func decodeBody(r *http.Request) *dialogflow.WebhookRequest {
	body := &dialogflow.WebhookRequest{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(body); err != nil {
		return nil
	}
	return body
}
