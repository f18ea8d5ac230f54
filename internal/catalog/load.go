package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default.toml
var defaultTOML []byte

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	c, err := Parse(defaultTOML, ".toml")
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return c, nil
}

// Load reads and validates a catalog file. The format is chosen by
// extension: .toml, .yaml or .yml.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog data in the format named by ext.
func Parse(data []byte, ext string) (*Catalog, error) {
	var c Catalog
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), &c); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks struct tags and the cross-field rules tags can't express.
func (c *Catalog) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	for name, f := range map[string]Feed{"trains": c.Trains, "buses": c.Buses} {
		for i, r := range f.RunRules {
			if r.Min != 0 && r.Max != 0 && r.Max < r.Min {
				return fmt.Errorf("validate: %s run_rules[%d]: max %d < min %d", name, i, r.Max, r.Min)
			}
		}
	}
	return nil
}
