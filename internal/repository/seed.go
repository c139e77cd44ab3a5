package repository

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
)

type seedFile struct {
	Events []model.Event `yaml:"events"`
}

// LoadSeedFile reads events from a YAML document with a top-level "events" list.
func LoadSeedFile(path string) (*StaticRepository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed decodes a seed document from r.
func LoadSeed(r io.Reader) (*StaticRepository, error) {
	var doc seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return NewStaticRepository(doc.Events)
}
