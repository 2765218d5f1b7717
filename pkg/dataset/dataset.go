// Package dataset reads the host input: an already-parsed roster of
// entities and a raw relation list, stored as YAML or JSON and optionally
// snappy-compressed.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dd0wney/cluso-netgraph/pkg/graph"
	"github.com/dd0wney/cluso-netgraph/pkg/validation"
	"github.com/golang/snappy"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDataset is wrapped by every decoding or validation failure.
var ErrInvalidDataset = errors.New("invalid dataset")

// CompressedSuffix marks snappy-compressed files.
const CompressedSuffix = ".sz"

// Format is the serialisation of a dataset file.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// Dataset is the host input.
type Dataset struct {
	Entities    []graph.Entity      `json:"entities" yaml:"entities" validate:"dive"`
	Relations   []graph.RawRelation `json:"relations" yaml:"relations"`
	Aliases     map[string]string   `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Respondents []string            `json:"respondents,omitempty" yaml:"respondents,omitempty"`
}

// FormatOf picks the format from the file name, ignoring a trailing .sz.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, CompressedSuffix)))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("%w: unsupported extension %q", ErrInvalidDataset, ext)
	}
}

// Load reads, decodes and validates the dataset at path.
func Load(path string) (*Dataset, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	ds, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Decode parses and validates a dataset document.
func Decode(data []byte, format Format) (*Dataset, error) {
	var ds Dataset
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &ds)
	default:
		err = yaml.Unmarshal(data, &ds)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidDataset, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Encode serialises the dataset.
func (d *Dataset) Encode(format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(d, "", "  ")
	}
	return yaml.Marshal(d)
}

// Validate requires every entity to carry a unique, non-empty id and every
// alias to point at a known entity. Relations are not checked: noisy,
// duplicated and dangling records are the canonicaliser's job.
func (d *Dataset) Validate() error {
	if err := validation.Struct(d); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	ids := make([]string, len(d.Entities))
	known := make(map[string]bool, len(d.Entities))
	for i, e := range d.Entities {
		ids[i] = e.ID
		known[e.ID] = true
	}

	err := validation.NewConfigValidator("Dataset").
		Custom("Entities", func() error { return validation.Unique("id", ids) }).
		Custom("Aliases", func() error {
			for token, id := range d.Aliases {
				if !known[id] {
					return fmt.Errorf("alias %q points at unknown entity %q", token, id)
				}
			}
			return nil
		}).
		Validate()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	return nil
}

// Resolver returns the alias table for this dataset.
func (d *Dataset) Resolver() *graph.AliasTable {
	return graph.NewAliasTable(d.Entities, d.Aliases)
}

// Build canonicalises the dataset into a graph.
func (d *Dataset) Build() *graph.Graph {
	return graph.BuildGraph(d.Entities, d.Relations, d.Resolver(), d.Respondents)
}

// ReadFile reads path, decompressing it when it ends in .sz.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !strings.HasSuffix(path, CompressedSuffix) {
		return data, nil
	}
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress %s: %w", ErrInvalidDataset, path, err)
	}
	return out, nil
}

// WriteFile writes data to path, compressing it when path ends in .sz.
func WriteFile(path string, data []byte) error {
	if strings.HasSuffix(path, CompressedSuffix) {
		data = snappy.Encode(nil, data)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
