package dataset

import (
	_ "embed"
	"errors"
	"fmt"
	"latencyviz/internal/models"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/exchanges.yaml
var defaultDataset []byte

// ErrDuplicateNode is returned when two entries share an id
var ErrDuplicateNode = errors.New("duplicate id")

// Dataset is the static set of simulated nodes and region markers
type Dataset struct {
	Nodes   []models.Node        `yaml:"nodes"`
	Regions []models.CloudRegion `yaml:"regions"`
}

// Default returns the embedded dataset
func Default() (*Dataset, error) {
	return Parse(defaultDataset)
}

// Load reads a dataset file. An empty path loads the embedded default.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes and validates a YAML dataset
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate requires non-empty, unique ids and in-range coordinates
func (d *Dataset) Validate() error {
	seen := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: missing id", i)
		}
		if seen[n.ID] {
			return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNode)
		}
		seen[n.ID] = true
		if err := checkCoords(n.Lat, n.Lon); err != nil {
			return fmt.Errorf("node %s: %w", n.ID, err)
		}
	}

	seen = make(map[string]bool, len(d.Regions))
	for i, r := range d.Regions {
		if r.ID == "" {
			return fmt.Errorf("region %d: missing id", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("region %s: %w", r.ID, ErrDuplicateNode)
		}
		seen[r.ID] = true
		if err := checkCoords(r.Lat, r.Lon); err != nil {
			return fmt.Errorf("region %s: %w", r.ID, err)
		}
	}
	return nil
}

func checkCoords(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range", lon)
	}
	return nil
}
