// Package config handles objtool configuration loading and management.
package config

import (
	"go.uber.org/zap"

	"github.com/Faultbox/objstream/pkg/encoding"
	"github.com/Faultbox/objstream/pkg/mesh"
	"github.com/Faultbox/objstream/pkg/obj"
)

// Config holds all objtool settings.
type Config struct {
	Parser  ParserConfig  `yaml:"parser"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// ParserConfig holds OBJ scanner settings.
type ParserConfig struct {
	PerSmoothingGroup   bool `yaml:"per_smoothing_group"`   // One sub-mesh per smoothing group number
	ImplicitObjectSplit bool `yaml:"implicit_object_split"` // Vertex after faces starts a new instance
	WarnUnsupported     bool `yaml:"warn_unsupported"`
	StreamInstances     bool `yaml:"stream_instances"`
}

// MeshConfig holds mesh building settings.
type MeshConfig struct {
	ComputeNormals bool   `yaml:"compute_normals"`
	NameCharset    string `yaml:"name_charset"` // e.g. utf-8, euc-kr, windows-1252
}

// ExportConfig holds export settings.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Parser: ParserConfig{
			PerSmoothingGroup:   false,
			ImplicitObjectSplit: true,
			WarnUnsupported:     true,
			StreamInstances:     false,
		},
		Mesh: MeshConfig{
			ComputeNormals: true,
			NameCharset:    "utf-8",
		},
		Export: ExportConfig{
			OutputDir: ".",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ParserOptions converts the parser section into obj.Options.
func (c *Config) ParserOptions(log *zap.Logger) obj.Options {
	return obj.Options{
		DescriptorPerSmoothingGroup: c.Parser.PerSmoothingGroup,
		ImplicitObjectSplit:         c.Parser.ImplicitObjectSplit,
		WarnUnsupported:             c.Parser.WarnUnsupported,
		StreamInstances:             c.Parser.StreamInstances,
		Logger:                      log,
	}
}

// MeshOptions converts the mesh section into mesh.Options. It fails on an
// unknown name charset.
func (c *Config) MeshOptions(log *zap.Logger) (mesh.Options, error) {
	names, err := encoding.NewNameDecoder(c.Mesh.NameCharset)
	if err != nil {
		return mesh.Options{}, err
	}
	return mesh.Options{
		ComputeNormals: c.Mesh.ComputeNormals,
		Names:          names,
		Logger:         log,
	}, nil
}
