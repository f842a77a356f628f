// Package generate builds Dialogflow agent configuration bundles from
// framework-level intent definitions.
//
// A generation run is a single synchronous pass: validate the input, prepare
// the intent set per language, build custom entity and intent documents,
// write the agent export file tree under <buildDir>/apiai, and archive it
// into bundle.zip. Entity-type resolution failures abort the run; files
// already written are left in place.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrWong99/dialogforge/internal/config"
	"github.com/MrWong99/dialogforge/internal/events"
	"github.com/MrWong99/dialogforge/internal/observe"
	"github.com/MrWong99/dialogforge/pkg/assistant"
	"github.com/MrWong99/dialogforge/pkg/dialogflow"
)

// intentPriority is the matching priority stamped on every generated intent.
const intentPriority = 500000

// invokeIntentName is the Dialogflow name of the synthetic welcome intent
// appended to every generated agent.
const invokeIntentName = "invokeGenericIntent"

// Input carries one generation run's worth of framework configuration.
// All maps are keyed by language tag.
type Input struct {
	// Languages lists the languages to generate, in output order.
	Languages []string

	// BuildDir is the directory the apiai/ output tree is created under.
	BuildDir string

	// Intents holds the per-language intent configurations. The adapter's
	// default language must be present.
	Intents map[string][]assistant.IntentConfiguration

	// EntityMapping maps placeholder names to logical entity types. Flat,
	// not per-language.
	EntityMapping assistant.EntityMapping

	// CustomEntities holds the per-language custom entity value lists.
	CustomEntities map[string]assistant.CustomEntityMapping
}

// Generator builds Dialogflow agent bundles. Construct with [New]; a
// Generator is cheap and single-use-safe, but one Execute call at a time.
type Generator struct {
	adapter config.AdapterConfig
	events  *events.Store
	metrics *observe.Metrics
	now     func() time.Time
}

// Option configures a [Generator].
type Option func(*Generator)

// WithClock overrides the time source used for document timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithMetrics sets the metrics instance generation telemetry is recorded to.
func WithMetrics(m *observe.Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// New creates a [Generator] using the given adapter configuration and event
// store.
func New(adapter config.AdapterConfig, store *events.Store, opts ...Option) *Generator {
	g := &Generator{
		adapter: adapter,
		events:  store,
		now:     time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	if g.metrics == nil {
		g.metrics = observe.Default()
	}
	return g
}

// preparedIntent is an intent configuration after name resolution and
// filtering: the intent is known to be speakable and representable in
// Dialogflow.
type preparedIntent struct {
	name       string
	utterances []string
	entities   []string
}

// intentBundle pairs one built intent document with its per-language
// training phrases.
type intentBundle struct {
	intent     dialogflow.Intent
	utterances map[string][]dialogflow.Utterance
}

// Execute runs one full generation pass over input. On success the
// <buildDir>/apiai tree and bundle.zip exist on disk. Entity-type resolution
// failures and I/O errors abort the run without cleaning up partial output.
func (g *Generator) Execute(ctx context.Context, input Input) error {
	start := time.Now()

	defaultLanguage := g.adapter.DefaultLanguage
	if _, ok := input.Intents[defaultLanguage]; !ok {
		return fmt.Errorf("generate: missing intent configuration for default language %q", defaultLanguage)
	}

	slog.Info("generating dialogflow agent",
		"languages", strings.Join(input.Languages, ","),
		"intents", len(input.Intents[defaultLanguage]),
		"build_dir", input.BuildDir,
	)

	prepared := make(map[string][]preparedIntent, len(input.Languages))
	for _, language := range input.Languages {
		prepared[language] = g.prepareIntents(input.Intents[language])
	}

	customEntities := g.buildCustomEntities(input)

	bundles, err := g.buildIntents(prepared, input)
	if err != nil {
		return err
	}
	bundles = append(bundles, newFallbackIntent())

	written, err := g.materialize(input, bundles, customEntities)
	if err != nil {
		return err
	}

	g.metrics.GeneratedFiles.Add(ctx, int64(written))
	g.metrics.GenerationDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.Int("languages", len(input.Languages))))

	slog.Info("dialogflow agent generated", "files", written, "duration", time.Since(start))
	return nil
}

// prepareIntents filters and resolves one language's intent configurations:
// unspeakable generic intents are removed, unresolvable generic intents are
// dropped, utterance-less intents are omitted with a warning, and the
// synthetic welcome intent is appended.
func (g *Generator) prepareIntents(configurations []assistant.IntentConfiguration) []preparedIntent {
	prepared := make([]preparedIntent, 0, len(configurations)+1)
	for _, configuration := range configurations {
		if generic, ok := configuration.Intent.Generic(); ok && !generic.Speakable() {
			continue
		}
		name, ok := dialogflow.IntentName(configuration.Intent)
		if !ok {
			// Generic intents without a Dialogflow representation are not an
			// error; the platform simply cannot trigger them.
			continue
		}
		if len(configuration.Utterances) == 0 {
			slog.Warn("intent has no utterances and will not be callable; omitting", "intent", name)
			if strings.HasSuffix(name, "GenericIntent") {
				slog.Warn("platform intent is missing platform utterances; update your platform utterance service or specify utterances yourself", "intent", name)
			}
			continue
		}
		prepared = append(prepared, preparedIntent{
			name:       name,
			utterances: configuration.Utterances,
			entities:   configuration.Entities,
		})
	}

	// The welcome intent is always part of the agent, utterances or not.
	return append(prepared, preparedIntent{name: invokeIntentName})
}

// customEntity pairs one custom entity type definition with its per-language
// value lists.
type customEntity struct {
	entity  dialogflow.Entity
	entries map[string]dialogflow.EntityEntries
}

// buildCustomEntities emits a definition for every logical entity type that
// has a custom value list in some language and no static Dialogflow type.
// The per-language entry lists pass through unchanged.
func (g *Generator) buildCustomEntities(input Input) []customEntity {
	byName := make(map[string]*customEntity)
	var ordered []*customEntity

	for _, language := range input.Languages {
		for logical, entries := range input.CustomEntities[language] {
			if _, isStatic := g.adapter.Entities[logical]; isStatic {
				continue
			}
			entity, ok := byName[logical]
			if !ok {
				entity = &customEntity{
					entity: dialogflow.Entity{
						ID:            uuid.NewString(),
						Name:          logical,
						IsOverridable: true,
					},
					entries: make(map[string]dialogflow.EntityEntries, len(input.Languages)),
				}
				byName[logical] = entity
				ordered = append(ordered, entity)
			}
			entity.entries[language] = entries
		}
	}

	result := make([]customEntity, len(ordered))
	for i, e := range ordered {
		result[i] = *e
	}
	return result
}

// buildIntents constructs one intent document per prepared default-language
// intent. The default language establishes the canonical intent set; other
// languages contribute training phrases for intents whose names they share.
func (g *Generator) buildIntents(prepared map[string][]preparedIntent, input Input) ([]intentBundle, error) {
	defaultLanguage := g.adapter.DefaultLanguage

	bundles := make([]intentBundle, 0, len(prepared[defaultLanguage]))
	for _, intent := range prepared[defaultLanguage] {
		parameters, err := g.intentParameters(intent.entities, input, defaultLanguage)
		if err != nil {
			return nil, err
		}

		doc := dialogflow.Intent{
			ID:       uuid.NewString(),
			Name:     intent.name,
			Auto:     true,
			Contexts: []string{},
			Responses: []dialogflow.IntentResponse{{
				AffectedContexts: []string{},
				Parameters:       parameters,
				Messages: []dialogflow.Message{{
					Type:   0,
					Lang:   defaultLanguage,
					Speech: []string{},
				}},
				DefaultResponsePlatforms: map[string]bool{},
				Speech:                   []string{},
			}},
			Priority:    intentPriority,
			WebhookUsed: true,
			LastUpdate:  g.now().Unix(),
			Events:      g.intentEvents(intent.name),
		}

		utterances := make(map[string][]dialogflow.Utterance)
		for _, language := range input.Languages {
			localized, ok := findPrepared(prepared[language], intent.name)
			if !ok {
				// Languages lacking this intent simply get no usersays file.
				continue
			}
			resolver := g.resolverFor(input, language)
			compiled := make([]dialogflow.Utterance, 0, len(localized.utterances))
			for _, utterance := range localized.utterances {
				u, err := parseUtterance(utterance).compile(resolver)
				if err != nil {
					return nil, fmt.Errorf("intent %q, language %q: %w", intent.name, language, err)
				}
				compiled = append(compiled, u)
			}
			utterances[language] = compiled
		}

		bundles = append(bundles, intentBundle{intent: doc, utterances: utterances})
	}
	return bundles, nil
}

// newFallbackIntent returns the fixed "__unhandled" fallback intent document
// every generated agent carries. It has no utterances in any language.
func newFallbackIntent() intentBundle {
	return intentBundle{
		intent: dialogflow.Intent{
			Templates: []string{},
			UserSays:  []string{},
			ID:        uuid.NewString(),
			Name:      dialogflow.UnhandledIntentName,
			Contexts:  []string{},
			Responses: []dialogflow.IntentResponse{{
				Action:           "input.unknown",
				AffectedContexts: []string{},
				Parameters:       []dialogflow.Parameter{},
				Messages: []dialogflow.Message{{
					Type:   0,
					Speech: []string{},
				}},
			}},
			WebhookUsed:    true,
			FallbackIntent: true,
			Events:         []dialogflow.Event{},
		},
		utterances: map[string][]dialogflow.Utterance{},
	}
}

// intentParameters builds the slot declarations for one intent, resolving
// each entity placeholder against the default language's custom entities.
func (g *Generator) intentParameters(entities []string, input Input, language string) ([]dialogflow.Parameter, error) {
	resolver := g.resolverFor(input, language)
	parameters := make([]dialogflow.Parameter, 0, len(entities))
	for _, name := range entities {
		dataType, err := resolver.resolve(name)
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, dialogflow.Parameter{
			ID:       uuid.NewString(),
			Name:     name,
			Value:    "$" + name,
			DataType: dataType,
		})
	}
	return parameters, nil
}

// intentEvents converts the event store's entries for an intent into the
// document representation. Intents without registrations get an empty list.
func (g *Generator) intentEvents(intent string) []dialogflow.Event {
	names := g.events.EventsFor(intent)
	eventDocs := make([]dialogflow.Event, len(names))
	for i, name := range names {
		eventDocs[i] = dialogflow.Event{Name: name}
	}
	return eventDocs
}

// resolverFor builds the entity-type resolver for one language.
func (g *Generator) resolverFor(input Input, language string) typeResolver {
	return typeResolver{
		entityMapping:  input.EntityMapping,
		staticEntities: g.adapter.Entities,
		custom:         input.CustomEntities[language],
	}
}

// findPrepared returns the prepared intent with the given name, if present.
func findPrepared(prepared []preparedIntent, name string) (preparedIntent, bool) {
	for _, p := range prepared {
		if p.name == name {
			return p, true
		}
	}
	return preparedIntent{}, false
}
