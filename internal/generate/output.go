package generate

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MrWong99/dialogforge/pkg/dialogflow"
)

// packageVersion is the version stamped into every bundle's package.json.
const packageVersion = "1.0.0"

// materialize writes the agent export file tree under <buildDir>/apiai and
// archives it into bundle.zip. It returns the number of JSON files written.
func (g *Generator) materialize(input Input, bundles []intentBundle, customEntities []customEntity) (int, error) {
	apiaiDir := filepath.Join(input.BuildDir, "apiai")
	intentsDir := filepath.Join(apiaiDir, "intents")
	entitiesDir := filepath.Join(apiaiDir, "entities")
	for _, dir := range []string{intentsDir, entitiesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("generate: create build directory: %w", err)
		}
	}

	written := 0
	write := func(dir, name string, v any) error {
		if err := writeJSON(filepath.Join(dir, name), v); err != nil {
			return err
		}
		written++
		return nil
	}

	for _, bundle := range bundles {
		if err := write(intentsDir, bundle.intent.Name+".json", bundle.intent); err != nil {
			return written, err
		}
		for _, language := range input.Languages {
			utterances := bundle.utterances[language]
			if len(utterances) == 0 {
				continue
			}
			name := fmt.Sprintf("%s_usersays_%s.json", bundle.intent.Name, language)
			if err := write(intentsDir, name, utterances); err != nil {
				return written, err
			}
		}
	}

	for _, entity := range customEntities {
		if err := write(entitiesDir, entity.entity.Name+".json", entity.entity); err != nil {
			return written, err
		}
		for _, language := range input.Languages {
			entries, ok := entity.entries[language]
			if !ok {
				continue
			}
			name := fmt.Sprintf("%s_entries_%s.json", entity.entity.Name, language)
			if err := write(entitiesDir, name, entries); err != nil {
				return written, err
			}
		}
	}

	if err := write(apiaiDir, "package.json", dialogflow.PackageManifest{Version: packageVersion}); err != nil {
		return written, err
	}

	if err := createBundle(apiaiDir); err != nil {
		return written, err
	}
	return written, nil
}

// writeJSON marshals v with two-space indentation and writes it to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("generate: marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("generate: write %s: %w", path, err)
	}
	return nil
}

// createBundle zips the intents/ and entities/ directories plus package.json
// into <apiaiDir>/bundle.zip, preserving the relative layout Dialogflow's
// agent import expects.
func createBundle(apiaiDir string) error {
	f, err := os.Create(filepath.Join(apiaiDir, "bundle.zip"))
	if err != nil {
		return fmt.Errorf("generate: create bundle: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, dir := range []string{"intents", "entities"} {
		if err := addDirToZip(zw, filepath.Join(apiaiDir, dir), dir); err != nil {
			return err
		}
	}
	if err := addFileToZip(zw, filepath.Join(apiaiDir, "package.json"), "package.json"); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("generate: finalize bundle: %w", err)
	}
	return nil
}

// addDirToZip adds every regular file under dir to zw, prefixed with name.
func addDirToZip(zw *zip.Writer, dir, name string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		return addFileToZip(zw, path, name+"/"+d.Name())
	})
}

// addFileToZip copies one file into zw under entryName.
func addFileToZip(zw *zip.Writer, path, entryName string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("generate: bundle %s: %w", entryName, err)
	}
	defer src.Close()

	dst, err := zw.Create(entryName)
	if err != nil {
		return fmt.Errorf("generate: bundle %s: %w", entryName, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("generate: bundle %s: %w", entryName, err)
	}
	return nil
}
