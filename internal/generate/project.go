package generate

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/dialogforge/internal/events"
	"github.com/MrWong99/dialogforge/pkg/assistant"
)

// projectFile is the YAML project definition the CLI feeds into a generation
// run: the languages to generate, the per-language intent configurations,
// the entity mappings, and the intent→event bindings.
type projectFile struct {
	Languages      []string                                `yaml:"languages"`
	EntityMapping  map[string]string                       `yaml:"entity_mapping"`
	Intents        map[string][]projectIntent              `yaml:"intents"`
	CustomEntities map[string]map[string][]assistant.Entry `yaml:"custom_entities"`
	Events         map[string][]string                     `yaml:"events"`
}

// projectIntent is one intent configuration in a project file. Exactly one
// of intent (a user-defined name) and generic (a generic intent name) must
// be set.
type projectIntent struct {
	Intent     string   `yaml:"intent"`
	Generic    string   `yaml:"generic"`
	Utterances []string `yaml:"utterances"`
	Entities   []string `yaml:"entities"`
}

// LoadProject reads a YAML project file and converts it into a generation
// [Input] (with the given build directory) plus the event store its event
// bindings populate.
func LoadProject(path, buildDir string) (Input, *events.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return Input{}, nil, fmt.Errorf("generate: open project %q: %w", path, err)
	}
	defer f.Close()

	input, store, err := loadProject(f, buildDir)
	if err != nil {
		return Input{}, nil, fmt.Errorf("generate: project %q: %w", path, err)
	}
	return input, store, nil
}

func loadProject(r io.Reader, buildDir string) (Input, *events.Store, error) {
	project := projectFile{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&project); err != nil {
		return Input{}, nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(project.Languages) == 0 {
		return Input{}, nil, fmt.Errorf("languages must not be empty")
	}

	input := Input{
		Languages:      project.Languages,
		BuildDir:       buildDir,
		Intents:        make(map[string][]assistant.IntentConfiguration, len(project.Intents)),
		EntityMapping:  project.EntityMapping,
		CustomEntities: make(map[string]assistant.CustomEntityMapping, len(project.CustomEntities)),
	}
	for language, intents := range project.Intents {
		configurations := make([]assistant.IntentConfiguration, 0, len(intents))
		for i, entry := range intents {
			intent, err := entry.intent()
			if err != nil {
				return Input{}, nil, fmt.Errorf("intents.%s[%d]: %w", language, i, err)
			}
			configurations = append(configurations, assistant.IntentConfiguration{
				Intent:     intent,
				Utterances: entry.Utterances,
				Entities:   entry.Entities,
			})
		}
		input.Intents[language] = configurations
	}
	for language, mapping := range project.CustomEntities {
		input.CustomEntities[language] = assistant.CustomEntityMapping(mapping)
	}

	store := events.NewStore()
	for intent, eventNames := range project.Events {
		store.Register(intent, eventNames...)
	}
	return input, store, nil
}

// intent converts a project file entry into an [assistant.Intent].
func (p projectIntent) intent() (assistant.Intent, error) {
	switch {
	case p.Intent != "" && p.Generic != "":
		return assistant.Intent{}, fmt.Errorf("set either intent or generic, not both")
	case p.Intent != "":
		return assistant.NamedIntent(p.Intent), nil
	case p.Generic != "":
		g, ok := assistant.ParseGenericIntent(p.Generic)
		if !ok {
			return assistant.Intent{}, fmt.Errorf("unknown generic intent %q", p.Generic)
		}
		return assistant.Generic(g), nil
	}
	return assistant.Intent{}, fmt.Errorf("missing intent name")
}
