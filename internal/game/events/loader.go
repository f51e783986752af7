package events

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// bankFile is the on-disk shape of one event-bank YAML file.
type bankFile struct {
	Templates []*EventTemplate `yaml:"templates"`
}

// LoadDirectory reads every *.yaml file in dir, parses each as an event bank,
// validates every template, and returns the combined template list in file
// order. Duplicate-ID detection is left to NewCatalog so banks merged from
// multiple directories still get checked.
//
// Precondition: dir must be a readable directory.
// Postcondition: every returned template passes Validate, or a non-nil error
// names the offending file.
func LoadDirectory(dir string) ([]*EventTemplate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading event bank dir %q: %w", dir, err)
	}

	var templates []*EventTemplate
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var bank bankFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&bank); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, t := range bank.Templates {
			if err := t.Validate(); err != nil {
				return nil, fmt.Errorf("%q: %w", path, err)
			}
		}
		templates = append(templates, bank.Templates...)
	}
	return templates, nil
}
