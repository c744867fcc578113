package config

import "github.com/coral-mesh/futurescope/internal/constants"

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version: constants.ConfigSchemaVersion,
		Output: OutputConfig{
			Dir:    constants.DefaultOutputDir,
			Prefix: constants.DefaultOutputPrefix,
		},
		Analysis: AnalysisConfig{
			Workers: constants.DefaultWorkers,
		},
		Logging: LoggingConfig{
			Level:  constants.DefaultLogLevel,
			Pretty: true,
		},
	}
}
