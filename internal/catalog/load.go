package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Default returns the catalog shipped with the binary.
func Default() (*Catalog, error) {
	c, err := Parse(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("default catalog: %w", err)
	}
	return c, nil
}

var defaultSettings = sync.OnceValue(func() Definition {
	var def Definition
	if err := yaml.Unmarshal(defaultYAML, &def); err != nil {
		return Definition{}
	}
	return Definition{Flow: def.Flow, Tanks: def.Tanks}
})

// Defaults returns the embedded flow and tank settings with no equipment.
// File and database catalogs start from it, so a source only needs to
// name the settings it changes.
func Defaults() Definition {
	return defaultSettings()
}

// Parse reads a YAML catalog definition over the default settings.
func Parse(data []byte) (*Catalog, error) {
	def := Defaults()
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}
	return New(def)
}

// LoadFile picks the loader by extension: .xlsx workbooks or YAML.
func LoadFile(path string) (*Catalog, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening catalog workbook: %w", err)
		}
		defer f.Close()
		def, err := ReadWorkbook(f)
		if err != nil {
			return nil, err
		}
		return New(def)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}
