package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagSrc    = flag.String("src", "", "Raw data source directory")
	flagDest   = flag.String("dest", "", "Converted vmap output directory")
	flagMagic  = flag.String("magic", "", "Expected raw model file magic")
	flagLog    = flag.String("logfile", "", "Write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSrc != "" {
		cfg.Assembler.SourceDir = *flagSrc
	}
	if *flagDest != "" {
		cfg.Assembler.DestDir = *flagDest
	}
	if *flagMagic != "" {
		cfg.Assembler.RawMagic = *flagMagic
	}
	if *flagLog != "" {
		cfg.Logging.LogFile = *flagLog
	}
}
