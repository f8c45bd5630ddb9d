package mapping

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/promake/pro2cmake/pkgs/errors"
)

// Overrides is the shape of a user-supplied mapping file. Entries are merged
// over the builtin tables, replacing existing keys.
type Overrides struct {
	Libraries map[string]string `yaml:"libraries"`
	QtModules map[string]string `yaml:"qt_modules"`
	Platforms map[string]string `yaml:"platforms"`
}

// LoadOverrides reads a YAML mapping file.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInputRead, "failed to read mapping file "+path, err)
	}
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, errors.Wrap(errors.ErrFileParse, "failed to parse mapping file "+path, err)
	}
	return &o, nil
}

// Apply merges the overrides into the builtin tables.
func Apply(o *Overrides) {
	for k, v := range o.Libraries {
		libraryMap[k] = v
	}
	for k, v := range o.QtModules {
		qtLibraryMap[k] = v
	}
	for k, v := range o.Platforms {
		platformMap[k] = v
	}
}
