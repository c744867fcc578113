// Package constants defines shared configuration constants and defaults.
package constants

// Output defaults.
const (
	// DefaultOutputPrefix names report files <prefix>_<seq>_<hash>.json.
	DefaultOutputPrefix = "rust_futures"

	DefaultOutputDir = "."

	ReportExtension = ".json"
	DOTExtension    = ".dot"

	// DefaultFileMode is used for report files.
	DefaultFileMode = 0o644
	DefaultDirMode  = 0o755
)

// Analysis defaults.
const (
	DefaultWorkers = 1

	// MaxWorkers caps analysis.workers.
	MaxWorkers = 256
)

// Config file limits.
const (
	// MaxConfigSize is the largest config.yaml that will be read.
	MaxConfigSize = 1 << 20

	ConfigSchemaVersion = "1"
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
)
