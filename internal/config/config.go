package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServiceConfig is the main configuration of the mirror service: which
// versions, architectures and repositories every public mirror is expected
// to carry. It is built once by Load and shared read-only across all
// mirror checks.
type ServiceConfig struct {
	ConfigVersion      int           `yaml:"config_version"`
	AllowedOutdate     string        `yaml:"allowed_outdate"`
	MirrorsDir         string        `yaml:"mirrors_dir"`
	VaultMirror        string        `yaml:"vault_mirror"`
	Versions           StringList    `yaml:"versions"`
	DuplicatedVersions StringMap     `yaml:"duplicated_versions"`
	VaultVersions      StringList    `yaml:"vault_versions"`
	Arches             []string      `yaml:"arches"`
	VersionsArches     VersionArches `yaml:"versions_arches"`
	RequiredProtocols  []string      `yaml:"required_protocols"`
	Repos              []Repo        `yaml:"repos"`
}

// Repo describes one repository of the distribution. Path may contain a
// $basearch placeholder. Empty Arches means the global arch list applies;
// empty Versions means the repo exists for every version.
type Repo struct {
	Name     string     `yaml:"name"`
	Path     string     `yaml:"path"`
	Arches   []string   `yaml:"arches"`
	Versions StringList `yaml:"versions"`
	Vault    bool       `yaml:"vault"`
}

// StringList is a list of strings that may be written as bare YAML numbers,
// which version lists usually are. Items keep their literal form, so 8.10
// decodes to "8.10" rather than a rounded float.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a sequence", value.Line)
	}
	out := make([]string, 0, len(value.Content))
	for _, item := range value.Content {
		if item.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: expected a scalar list item", item.Line)
		}
		out = append(out, item.Value)
	}
	*l = out
	return nil
}

// StringMap is a string-to-string map whose keys and values may be written
// as bare YAML numbers, preserved in their literal form.
type StringMap map[string]string

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *StringMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", value.Line)
	}
	out := make(map[string]string, len(value.Content)/2)
	for i := 0; i < len(value.Content)-1; i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: expected scalar key and value", key.Line)
		}
		out[key.Value] = val.Value
	}
	*m = out
	return nil
}

// VersionArches is the per-version architecture allow-list. A version
// missing from the map permits every global arch.
type VersionArches map[string][]string

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *VersionArches) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", value.Line)
	}
	out := make(map[string][]string, len(value.Content)/2)
	for i := 0; i < len(value.Content)-1; i += 2 {
		key := value.Content[i]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: expected a scalar key", key.Line)
		}
		var arches StringList
		if err := value.Content[i+1].Decode(&arches); err != nil {
			return fmt.Errorf("arches of version %q: %w", key.Value, err)
		}
		out[key.Value] = arches
	}
	*m = out
	return nil
}

// Load reads, schema-validates and parses the service config at path.
func Load(path string) (*ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading service config: %w", err)
	}

	doc, version, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing service config %s: %w", path, err)
	}
	if err := validateDocument(doc, schemaService, version); err != nil {
		return nil, fmt.Errorf("service config %s: %w", path, err)
	}

	var cfg ServiceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing service config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("service config %s: %w", path, err)
	}
	return &cfg, nil
}

// validate enforces the cross-field rules the JSON schema cannot express:
// every repo-level arch and version must appear in the global lists.
func (c *ServiceConfig) validate() error {
	arches := make(map[string]struct{}, len(c.Arches))
	for _, a := range c.Arches {
		arches[a] = struct{}{}
	}
	versions := make(map[string]struct{}, len(c.Versions))
	for _, v := range c.Versions {
		versions[v] = struct{}{}
	}

	for _, repo := range c.Repos {
		for _, a := range repo.Arches {
			if _, ok := arches[a]; !ok {
				return fmt.Errorf("arch %q of repo %q is absent in the global arch list", a, repo.Name)
			}
		}
		for _, v := range repo.Versions {
			if _, ok := versions[v]; !ok {
				return fmt.Errorf("version %q of repo %q is absent in the global version list", v, repo.Name)
			}
		}
	}
	return nil
}

// decodeDocument unmarshals raw YAML into a generic document for schema
// validation and extracts its config_version (1 when absent).
func decodeDocument(data []byte) (map[string]interface{}, int, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, 0, err
	}
	for key, val := range doc {
		doc[key] = stringifyKeys(val)
	}
	version := 1
	if raw, ok := doc["config_version"]; ok {
		v, ok := raw.(int)
		if !ok {
			return nil, 0, fmt.Errorf("config_version must be an integer, got %T", raw)
		}
		version = v
	}
	return doc, version, nil
}

// stringifyKeys rewrites mappings with non-string keys, which YAML produces
// for bare-number keys like "8: 8.10", into string-keyed maps so the document
// survives the JSON round trip inside schema validation.
func stringifyKeys(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		for key, val := range v {
			v[key] = stringifyKeys(val)
		}
		return v
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[fmt.Sprint(key)] = stringifyKeys(val)
		}
		return out
	case []interface{}:
		for i, item := range v {
			v[i] = stringifyKeys(item)
		}
		return v
	default:
		return v
	}
}
