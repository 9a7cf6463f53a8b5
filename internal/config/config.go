package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFiles are probed, in order, when no config path is given.
var DefaultFiles = []string{"gqlmodel.yaml", "gqlmodel.yml", "gqlmodel.toml"}

// DefaultObjectBases is the base every generated class inherits from.
var DefaultObjectBases = []string{"pydantic.BaseModel"}

const (
	DefaultOut          = "schema.py"
	DefaultProtoPackage = "gqlmodel.generated"
)

// Config holds a project's generator configuration.
type Config struct {
	Schema    []string  `yaml:"schema" toml:"schema"`
	Documents []string  `yaml:"documents" toml:"documents"`
	Generator Generator `yaml:"generator" toml:"generator"`

	// Dir is the directory of the loaded file; relative paths resolve against it.
	Dir string `yaml:"-" toml:"-"`
}

// Generator holds the knobs that shape generated code.
type Generator struct {
	Out            string `yaml:"out" toml:"out"`
	SplitDocuments bool   `yaml:"split_documents" toml:"split_documents"`
	Parallelism    int    `yaml:"parallelism" toml:"parallelism"`

	// AlwaysResolveInterfaces requires at least one concrete variant per
	// interface or union selection and drops the fallback base variant.
	AlwaysResolveInterfaces bool   `yaml:"always_resolve_interfaces" toml:"always_resolve_interfaces"`
	Freeze                  Freeze `yaml:"freeze" toml:"freeze"`

	ObjectBases       []string            `yaml:"object_bases" toml:"object_bases"`
	InterfaceBases    []string            `yaml:"interface_bases" toml:"interface_bases"`
	AdditionalBases   map[string][]string `yaml:"additional_bases" toml:"additional_bases"`
	ScalarDefinitions map[string]string   `yaml:"scalar_definitions" toml:"scalar_definitions"`
	EnumDefinitions   map[string]string   `yaml:"enum_definitions" toml:"enum_definitions"`

	// MaxDepth bounds selection nesting. Zero disables the guard.
	MaxDepth     int    `yaml:"max_depth" toml:"max_depth"`
	ProtoPackage string `yaml:"proto_package" toml:"proto_package"`
}

// Freeze selects immutable emission.
type Freeze struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Schema:    []string{"schema.graphql"},
		Documents: []string{"graphql"},
		Generator: DefaultGenerator(),
	}
}

// DefaultGenerator returns the generator settings used when nothing is configured.
func DefaultGenerator() Generator {
	return Generator{
		Out:                     DefaultOut,
		Parallelism:             1,
		AlwaysResolveInterfaces: true,
		ObjectBases:             append([]string(nil), DefaultObjectBases...),
		ProtoPackage:            DefaultProtoPackage,
	}
}

// Interfaces returns the bases of interface base classes. They default to
// the object bases.
func (g Generator) Interfaces() []string {
	if len(g.InterfaceBases) > 0 {
		return g.InterfaceBases
	}
	return g.ObjectBases
}

// Additional returns the extra bases configured for a schema type.
func (g Generator) Additional(typeName string) []string {
	return g.AdditionalBases[typeName]
}

// Load reads the configuration at path. YAML and TOML are told apart by
// extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	cfg.applyDefaults()
	return cfg, nil
}

// Locate returns the path of the first of DefaultFiles present in dir, or
// an empty string.
func Locate(dir string) string {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Find loads the first of DefaultFiles present in dir. When none exists the
// defaults are returned, rooted at dir.
func Find(dir string) (*Config, error) {
	if path := Locate(dir); path != "" {
		return Load(path)
	}
	cfg := Default()
	cfg.Dir = dir
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Generator.Out == "" {
		c.Generator.Out = DefaultOut
	}
	if c.Generator.Parallelism <= 0 {
		c.Generator.Parallelism = 1
	}
	if len(c.Generator.ObjectBases) == 0 {
		c.Generator.ObjectBases = append([]string(nil), DefaultObjectBases...)
	}
	if c.Generator.ProtoPackage == "" {
		c.Generator.ProtoPackage = DefaultProtoPackage
	}
	if c.Generator.MaxDepth < 0 {
		c.Generator.MaxDepth = 0
	}
}

// Resolve joins a configured path with the config directory.
func (c *Config) Resolve(path string) string {
	if filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// SchemaPaths returns the schema locations resolved against Dir.
func (c *Config) SchemaPaths() []string { return c.resolveAll(c.Schema) }

// DocumentPaths returns the document locations resolved against Dir.
func (c *Config) DocumentPaths() []string { return c.resolveAll(c.Documents) }

func (c *Config) resolveAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = c.Resolve(p)
	}
	return out
}
