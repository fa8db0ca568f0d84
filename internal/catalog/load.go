package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"
)

// LoadYAML reads one suite from a YAML file of the form:
//
//	name: rasters
//	cases:
//	  - expr: size (region x)
//	    type: Ratio
//	  - expr: size one
//	    error: SubtypeMismatch
//
// A missing name defaults to the file's base name.
func LoadYAML(path string) (Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Suite{}, fmt.Errorf("catalog: %w", err)
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Suite{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := s.Validate(); err != nil {
		return Suite{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return s, nil
}

// LoadTxtar reads a bundle of suites from a txtar archive: each file
// in the archive is one suite named after the file, holding the YAML
// case list:
//
//	-- rasters --
//	- expr: size (region x)
//	  type: Ratio
//	-- failures --
//	- expr: size one
//	  error: SubtypeMismatch
func LoadTxtar(path string) ([]Suite, error) {
	ar, err := txtar.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if len(ar.Files) == 0 {
		return nil, fmt.Errorf("catalog %s: archive holds no suites", path)
	}
	suites := make([]Suite, 0, len(ar.Files))
	for _, f := range ar.Files {
		var cases []Case
		if err := yaml.Unmarshal(f.Data, &cases); err != nil {
			return nil, fmt.Errorf("catalog %s, suite %s: %w", path, f.Name, err)
		}
		s := Suite{Name: f.Name, Cases: cases}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
		suites = append(suites, s)
	}
	return suites, nil
}
