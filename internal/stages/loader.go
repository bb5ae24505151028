package stages

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk form of a custom catalog
type File struct {
	Stages []Name `yaml:"stages"`
}

// LoadFile reads a YAML catalog. Unknown fields are rejected so typos fail
// loudly instead of silently falling back to defaults.
//
//	stages:
//	  - Все сделки
//	  - Все готово
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode stage catalog: %w", err)
	}
	return New(f.Stages)
}
