package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Catalog is the reference data loaded into an empty store:
// genre names and MPA rating names, in id order.
type Catalog struct {
	Genres  []string `yaml:"genres"`
	Ratings []string `yaml:"mpa"`
}

// DefaultCatalog returns the embedded reference catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultSeed)
}

// LoadCatalog reads a catalog file, or the embedded default when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects blank and repeated names.
func (c *Catalog) Validate() error {
	if err := uniqueNames("genres", c.Genres); err != nil {
		return err
	}
	return uniqueNames("mpa", c.Ratings)
}

func uniqueNames(section string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("seed catalog: %s[%d] is blank", section, i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("seed catalog: %s contains %q twice", section, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
