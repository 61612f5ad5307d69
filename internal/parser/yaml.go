package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/bulkrename/internal/models"
)

// YAMLParser parses YAML mapping files:
//
//	directory: ./photos
//	renames:
//	  - from: IMG_0001.jpg
//	    to: beach.jpg
type YAMLParser struct{}

// NewYAMLParser creates a YAMLParser.
func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

type yamlMapping struct {
	Directory string              `yaml:"directory"`
	Renames   []models.RenamePair `yaml:"renames"`
}

// Parse decodes a YAML mapping. Unknown keys are rejected so that typos such
// as "rename:" do not silently produce an empty plan.
func (p *YAMLParser) Parse(r io.Reader) (*Mapping, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw yamlMapping
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("mapping file is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range raw.Renames {
		raw.Renames[i].From = strings.TrimSpace(raw.Renames[i].From)
		raw.Renames[i].To = strings.TrimSpace(raw.Renames[i].To)
	}
	if err := validatePairs(raw.Renames); err != nil {
		return nil, err
	}
	if raw.Renames == nil {
		raw.Renames = []models.RenamePair{}
	}

	return &Mapping{Directory: strings.TrimSpace(raw.Directory), Renames: raw.Renames}, nil
}
