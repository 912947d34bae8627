package config

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mirror describes a single mirror from its YAML descriptor. URLs maps a
// protocol ("https", "rsync", ...) to the mirror's base address for that
// protocol. Private mirrors are never probed; a non-empty CloudType marks
// cloud-hosted mirrors, which do not carry beta versions.
type Mirror struct {
	ConfigVersion   int               `yaml:"config_version"`
	Name            string            `yaml:"name"`
	UpdateFrequency string            `yaml:"update_frequency"`
	Sponsor         string            `yaml:"sponsor"`
	SponsorURL      string            `yaml:"sponsor_url"`
	Email           string            `yaml:"email"`
	URLs            map[string]string `yaml:"address"`
	CloudType       string            `yaml:"cloud_type"`
	CloudRegions    []string          `yaml:"cloud_regions"`
	Private         bool              `yaml:"private"`
	Monopoly        bool              `yaml:"monopoly"`
}

// LoadMirror reads, schema-validates and parses one mirror descriptor.
func LoadMirror(path string) (*Mirror, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mirror config: %w", err)
	}

	doc, version, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing mirror config %s: %w", path, err)
	}
	if err := validateDocument(doc, schemaMirror, version); err != nil {
		return nil, fmt.Errorf("mirror config %s: %w", path, err)
	}

	m := Mirror{Email: "unknown"}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing mirror config %s: %w", path, err)
	}
	return &m, nil
}

// LoadMirrorsDir walks dir recursively and parses every .yml/.yaml file as
// a mirror descriptor. A file that fails validation is logged and skipped
// so one broken descriptor cannot take the whole fleet out of the list.
func LoadMirrorsDir(dir string, logger *slog.Logger) ([]*Mirror, error) {
	var mirrors []*Mirror
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}
		m, err := LoadMirror(path)
		if err != nil {
			logger.Error("skipping invalid mirror config", "path", path, "error", err)
			return nil
		}
		mirrors = append(mirrors, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking mirrors dir %s: %w", dir, err)
	}
	return mirrors, nil
}
