// Package config handles assembler configuration loading and management.
package config

import "github.com/Faultbox/vmap-assembler/pkg/formats"

// Config holds all assembler settings.
type Config struct {
	Assembler AssemblerConfig `yaml:"assembler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AssemblerConfig holds the conversion pipeline settings.
type AssemblerConfig struct {
	SourceDir string `yaml:"source_dir"` // extracted raw data (dir_bin, raw models)
	DestDir   string `yaml:"dest_dir"`   // converted vmap output
	RawMagic  string `yaml:"raw_magic"`  // expected raw model file magic
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Assembler: AssemblerConfig{
			SourceDir: "Buildings",
			DestDir:   "vmaps",
			RawMagic:  formats.RawVMapMagic,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
