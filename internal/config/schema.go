package config

// Config is the futurescope configuration file.
//
// Every leaf can be overridden by the environment variable named in its env
// tag. Command-line flags override both.
type Config struct {
	Version    string           `yaml:"version"`
	Output     OutputConfig     `yaml:"output"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// OutputConfig controls where unit reports are written.
type OutputConfig struct {
	Dir    string `yaml:"dir" env:"FUTURESCOPE_OUTPUT_DIR"`
	Prefix string `yaml:"prefix" env:"FUTURESCOPE_OUTPUT_PREFIX"`
	// DOT also writes a Graphviz file next to each report.
	DOT bool `yaml:"dot" env:"FUTURESCOPE_OUTPUT_DOT"`
}

// ClassifierConfig holds CEL expressions replacing the substring heuristics.
// An empty expression keeps the default heuristic.
type ClassifierConfig struct {
	FutureExpr       string `yaml:"future_expr" env:"FUTURESCOPE_FUTURE_EXPR"`
	StateMachineExpr string `yaml:"state_machine_expr" env:"FUTURESCOPE_STATE_MACHINE_EXPR"`
}

// AnalysisConfig controls unit selection and parallelism.
type AnalysisConfig struct {
	Workers int `yaml:"workers" env:"FUTURESCOPE_WORKERS"`
	// UnitFilter keeps units whose name contains it.
	UnitFilter string `yaml:"unit_filter" env:"FUTURESCOPE_UNIT_FILTER"`
}

// StorageConfig enables DuckDB persistence when Database is set.
type StorageConfig struct {
	Database string `yaml:"database" env:"FUTURESCOPE_DATABASE"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"FUTURESCOPE_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"FUTURESCOPE_LOG_PRETTY"`
}

// StorageEnabled reports whether reports are persisted.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Database != ""
}
