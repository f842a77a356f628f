package generate_test

import (
	"archive/zip"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrWong99/dialogforge/internal/config"
	"github.com/MrWong99/dialogforge/internal/events"
	"github.com/MrWong99/dialogforge/internal/generate"
	"github.com/MrWong99/dialogforge/pkg/assistant"
	"github.com/MrWong99/dialogforge/pkg/dialogflow"
)

func testAdapter() config.AdapterConfig {
	return config.AdapterConfig{
		Route:           "/apiai",
		DefaultLanguage: "en",
		Entities: map[string]string{
			"number": "@sys.number",
		},
	}
}

func readIntent(t *testing.T, buildDir, name string) dialogflow.Intent {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(buildDir, "apiai", "intents", name+".json"))
	if err != nil {
		t.Fatalf("read intent %s: %v", name, err)
	}
	var intent dialogflow.Intent
	if err := json.Unmarshal(data, &intent); err != nil {
		t.Fatalf("decode intent %s: %v", name, err)
	}
	return intent
}

func TestExecute_WritesAgentFileTree(t *testing.T) {
	buildDir := t.TempDir()
	store := events.NewStore()
	store.Register("helloWorld", "WELCOME")

	fixed := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	g := generate.New(testAdapter(), store, generate.WithClock(func() time.Time { return fixed }))

	input := generate.Input{
		Languages: []string{"en", "de"},
		BuildDir:  buildDir,
		Intents: map[string][]assistant.IntentConfiguration{
			"en": {
				{Intent: assistant.NamedIntent("helloWorld"), Utterances: []string{"hello {{entity1}}"}, Entities: []string{"entity1"}},
				{Intent: assistant.Generic(assistant.GenericYes), Utterances: []string{"yes please"}},
			},
			"de": {
				{Intent: assistant.NamedIntent("helloWorld"), Utterances: []string{"hallo {{entity1}}"}, Entities: []string{"entity1"}},
			},
		},
		EntityMapping: assistant.EntityMapping{"entity1": "number"},
	}
	if err := g.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for _, path := range []string{
		filepath.Join("intents", "helloWorld.json"),
		filepath.Join("intents", "helloWorld_usersays_en.json"),
		filepath.Join("intents", "helloWorld_usersays_de.json"),
		filepath.Join("intents", "yesGenericIntent.json"),
		filepath.Join("intents", "yesGenericIntent_usersays_en.json"),
		filepath.Join("intents", "invokeGenericIntent.json"),
		filepath.Join("intents", "__unhandled.json"),
		"package.json",
		"bundle.zip",
	} {
		if _, err := os.Stat(filepath.Join(buildDir, "apiai", path)); err != nil {
			t.Errorf("expected output file %s: %v", path, err)
		}
	}

	// No usersays files for intents the language does not define.
	if _, err := os.Stat(filepath.Join(buildDir, "apiai", "intents", "yesGenericIntent_usersays_de.json")); err == nil {
		t.Error("yesGenericIntent_usersays_de.json exists, want absent")
	}
	// The synthetic welcome intent has no utterances at all.
	if _, err := os.Stat(filepath.Join(buildDir, "apiai", "intents", "invokeGenericIntent_usersays_en.json")); err == nil {
		t.Error("invokeGenericIntent_usersays_en.json exists, want absent")
	}

	hello := readIntent(t, buildDir, "helloWorld")
	if hello.Priority != 500000 {
		t.Errorf("helloWorld Priority = %d, want 500000", hello.Priority)
	}
	if !hello.WebhookUsed {
		t.Error("helloWorld WebhookUsed = false, want true")
	}
	if hello.LastUpdate != fixed.Unix() {
		t.Errorf("helloWorld LastUpdate = %d, want %d", hello.LastUpdate, fixed.Unix())
	}
	if len(hello.Events) != 1 || hello.Events[0].Name != "WELCOME" {
		t.Errorf("helloWorld Events = %+v, want [WELCOME]", hello.Events)
	}
	if len(hello.Responses) != 1 || len(hello.Responses[0].Parameters) != 1 {
		t.Fatalf("helloWorld Responses = %+v, want one response with one parameter", hello.Responses)
	}
	param := hello.Responses[0].Parameters[0]
	if param.Name != "entity1" || param.Value != "$entity1" || param.DataType != "@sys.number" {
		t.Errorf("helloWorld parameter = %+v, want entity1/$entity1/@sys.number", param)
	}

	fallback := readIntent(t, buildDir, "__unhandled")
	if !fallback.FallbackIntent {
		t.Error("__unhandled FallbackIntent = false, want true")
	}
	if fallback.Auto {
		t.Error("__unhandled Auto = true, want false")
	}
	if got := fallback.Responses[0].Action; got != "input.unknown" {
		t.Errorf("__unhandled Action = %q, want input.unknown", got)
	}
}

func TestExecute_BundleContainsAgentFiles(t *testing.T) {
	buildDir := t.TempDir()
	g := generate.New(testAdapter(), events.NewStore())

	input := generate.Input{
		Languages: []string{"en"},
		BuildDir:  buildDir,
		Intents: map[string][]assistant.IntentConfiguration{
			"en": {{Intent: assistant.NamedIntent("helloWorld"), Utterances: []string{"hello"}}},
		},
	}
	if err := g.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	zr, err := zip.OpenReader(filepath.Join(buildDir, "apiai", "bundle.zip"))
	if err != nil {
		t.Fatalf("open bundle.zip: %v", err)
	}
	defer zr.Close()

	entries := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = true
	}
	for _, want := range []string{
		"intents/helloWorld.json",
		"intents/helloWorld_usersays_en.json",
		"intents/invokeGenericIntent.json",
		"intents/__unhandled.json",
		"package.json",
	} {
		if !entries[want] {
			t.Errorf("bundle.zip misses entry %s (have %v)", want, zr.File)
		}
	}
	if entries["bundle.zip"] {
		t.Error("bundle.zip contains itself")
	}
}

func TestExecute_CustomEntities(t *testing.T) {
	buildDir := t.TempDir()
	g := generate.New(testAdapter(), events.NewStore())

	input := generate.Input{
		Languages: []string{"en", "de"},
		BuildDir:  buildDir,
		Intents: map[string][]assistant.IntentConfiguration{
			"en": {{
				Intent:     assistant.NamedIntent("weather"),
				Utterances: []string{"weather in {{city}}"},
				Entities:   []string{"city"},
			}},
		},
		EntityMapping: assistant.EntityMapping{"city": "myCity"},
		CustomEntities: map[string]assistant.CustomEntityMapping{
			"en": {"myCity": {{Value: "Berlin", Synonyms: []string{"capital"}}}},
			"de": {"myCity": {{Value: "Berlin"}}},
		},
	}
	if err := g.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(buildDir, "apiai", "entities", "myCity.json"))
	if err != nil {
		t.Fatalf("read entity definition: %v", err)
	}
	var entity dialogflow.Entity
	if err := json.Unmarshal(data, &entity); err != nil {
		t.Fatalf("decode entity definition: %v", err)
	}
	if entity.Name != "myCity" || !entity.IsOverridable {
		t.Errorf("entity = %+v, want name myCity, overridable", entity)
	}

	for _, lang := range []string{"en", "de"} {
		name := "myCity_entries_" + lang + ".json"
		data, err := os.ReadFile(filepath.Join(buildDir, "apiai", "entities", name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		var entries dialogflow.EntityEntries
		if err := json.Unmarshal(data, &entries); err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if len(entries) != 1 || entries[0].Value != "Berlin" {
			t.Errorf("%s = %+v, want one Berlin entry", name, entries)
		}
	}

	// The intent's parameter references the custom type.
	weather := readIntent(t, buildDir, "weather")
	if got := weather.Responses[0].Parameters[0].DataType; got != "@myCity" {
		t.Errorf("weather parameter DataType = %q, want @myCity", got)
	}
}

func TestExecute_SkipsUnspeakableAndEmptyIntents(t *testing.T) {
	buildDir := t.TempDir()
	g := generate.New(testAdapter(), events.NewStore())

	input := generate.Input{
		Languages: []string{"en"},
		BuildDir:  buildDir,
		Intents: map[string][]assistant.IntentConfiguration{
			"en": {
				{Intent: assistant.Generic(assistant.GenericUnhandled), Utterances: []string{"whatever"}},
				{Intent: assistant.NamedIntent("silent")},
				{Intent: assistant.NamedIntent("helloWorld"), Utterances: []string{"hello"}},
			},
		},
	}
	if err := g.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	intentsDir := filepath.Join(buildDir, "apiai", "intents")
	dirEntries, err := os.ReadDir(intentsDir)
	if err != nil {
		t.Fatalf("read intents dir: %v", err)
	}
	var names []string
	for _, e := range dirEntries {
		names = append(names, e.Name())
	}
	joined := strings.Join(names, " ")
	if strings.Contains(joined, "silent") {
		t.Errorf("utterance-less intent was generated: %v", names)
	}
	// The fixed fallback document is the only unhandled artifact.
	want := 4 // helloWorld, helloWorld_usersays_en, invokeGenericIntent, __unhandled
	if len(names) != want {
		t.Errorf("intent files = %v, want %d files", names, want)
	}
}

// warnCapture records warning-level log output for assertions.
type warnCapture struct {
	mu      sync.Mutex
	entries []warnEntry
}

type warnEntry struct {
	message string
	intent  string
}

func (c *warnCapture) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}

func (c *warnCapture) Handle(_ context.Context, r slog.Record) error {
	e := warnEntry{message: r.Message}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "intent" {
			e.intent = a.Value.String()
		}
		return true
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	return nil
}

func (c *warnCapture) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *warnCapture) WithGroup(string) slog.Handler      { return c }

func (c *warnCapture) messagesFor(intent string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var messages []string
	for _, e := range c.entries {
		if e.intent == intent {
			messages = append(messages, e.message)
		}
	}
	return messages
}

func TestExecute_WarnsOnUtteranceLessIntents(t *testing.T) {
	capture := &warnCapture{}
	prev := slog.Default()
	slog.SetDefault(slog.New(capture))
	t.Cleanup(func() { slog.SetDefault(prev) })

	buildDir := t.TempDir()
	g := generate.New(testAdapter(), events.NewStore())

	input := generate.Input{
		Languages: []string{"en"},
		BuildDir:  buildDir,
		Intents: map[string][]assistant.IntentConfiguration{
			"en": {
				{Intent: assistant.Generic(assistant.GenericYes)},
				{Intent: assistant.NamedIntent("silent")},
				{Intent: assistant.NamedIntent("helloWorld"), Utterances: []string{"hello"}},
			},
		},
	}
	if err := g.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for _, name := range []string{"yesGenericIntent.json", "silent.json"} {
		if _, err := os.Stat(filepath.Join(buildDir, "apiai", "intents", name)); err == nil {
			t.Errorf("%s exists, want omitted", name)
		}
	}

	// A platform intent without utterances gets the omission warning plus a
	// second one pointing at the platform utterance source.
	generic := capture.messagesFor("yesGenericIntent")
	if len(generic) != 2 {
		t.Fatalf("warnings for yesGenericIntent = %q, want 2", generic)
	}
	if !strings.Contains(generic[0], "no utterances") {
		t.Errorf("first warning = %q, want the omission notice", generic[0])
	}
	if !strings.Contains(generic[1], "platform utterance") {
		t.Errorf("second warning = %q, want the platform-utterances notice", generic[1])
	}

	// A user-defined intent gets the omission warning only.
	named := capture.messagesFor("silent")
	if len(named) != 1 || !strings.Contains(named[0], "no utterances") {
		t.Errorf("warnings for silent = %q, want the omission notice only", named)
	}

	if warned := capture.messagesFor("helloWorld"); len(warned) != 0 {
		t.Errorf("warnings for helloWorld = %q, want none", warned)
	}
}

func TestExecute_AgentDocumentKeys(t *testing.T) {
	buildDir := t.TempDir()
	g := generate.New(testAdapter(), events.NewStore())

	input := generate.Input{
		Languages: []string{"en"},
		BuildDir:  buildDir,
		Intents: map[string][]assistant.IntentConfiguration{
			"en": {{Intent: assistant.NamedIntent("helloWorld"), Utterances: []string{"hello"}}},
		},
	}
	if err := g.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	hello, err := os.ReadFile(filepath.Join(buildDir, "apiai", "intents", "helloWorld.json"))
	if err != nil {
		t.Fatalf("read helloWorld.json: %v", err)
	}
	for _, want := range []string{`"defaultResponsePlatforms": {}`, `"speech": []`} {
		if !strings.Contains(string(hello), want) {
			t.Errorf("helloWorld.json misses %s", want)
		}
	}
	if strings.Contains(string(hello), `"templates"`) || strings.Contains(string(hello), `"userSays"`) {
		t.Error("helloWorld.json carries the legacy fallback-only keys")
	}

	fallback, err := os.ReadFile(filepath.Join(buildDir, "apiai", "intents", "__unhandled.json"))
	if err != nil {
		t.Fatalf("read __unhandled.json: %v", err)
	}
	for _, want := range []string{`"templates": []`, `"userSays": []`} {
		if !strings.Contains(string(fallback), want) {
			t.Errorf("__unhandled.json misses %s", want)
		}
	}
	if strings.Contains(string(fallback), `"defaultResponsePlatforms"`) {
		t.Error("__unhandled.json carries defaultResponsePlatforms, want omitted")
	}
}

func TestExecute_MissingDefaultLanguageFails(t *testing.T) {
	g := generate.New(testAdapter(), events.NewStore())

	err := g.Execute(context.Background(), generate.Input{
		Languages: []string{"de"},
		BuildDir:  t.TempDir(),
		Intents: map[string][]assistant.IntentConfiguration{
			"de": {{Intent: assistant.NamedIntent("helloWorld"), Utterances: []string{"hallo"}}},
		},
	})
	if err == nil {
		t.Fatal("Execute succeeded without the default language, want error")
	}
	if !strings.Contains(err.Error(), `"en"`) {
		t.Errorf("error %q does not name the missing language", err)
	}
}

func TestExecute_UnresolvableEntityFails(t *testing.T) {
	g := generate.New(testAdapter(), events.NewStore())

	err := g.Execute(context.Background(), generate.Input{
		Languages: []string{"en"},
		BuildDir:  t.TempDir(),
		Intents: map[string][]assistant.IntentConfiguration{
			"en": {{Intent: assistant.NamedIntent("helloWorld"), Utterances: []string{"hello {{nosuch}}"}}},
		},
	})
	if err == nil {
		t.Fatal("Execute succeeded with an unresolvable entity, want error")
	}
	if !strings.Contains(err.Error(), "helloWorld") || !strings.Contains(err.Error(), `"en"`) {
		t.Errorf("error %q does not name intent and language", err)
	}
}
