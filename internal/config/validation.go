package config

import (
	"fmt"
	"strings"

	"github.com/coral-mesh/futurescope/internal/constants"
	"github.com/coral-mesh/futurescope/internal/logging"
	"github.com/coral-mesh/futurescope/internal/policy"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiValidationError represents multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "validation failed with %d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []ValidationError
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Version != constants.ConfigSchemaVersion {
		add("version", "unsupported version %q (want %q)", c.Version, constants.ConfigSchemaVersion)
	}

	if c.Output.Dir == "" {
		add("output.dir", "output directory is required")
	}
	switch {
	case c.Output.Prefix == "":
		add("output.prefix", "prefix is required")
	case strings.ContainsAny(c.Output.Prefix, `/\`):
		add("output.prefix", "prefix %q must not contain a path separator", c.Output.Prefix)
	}

	if c.Analysis.Workers < 1 || c.Analysis.Workers > constants.MaxWorkers {
		add("analysis.workers", "must be between 1 and %d, got %d", constants.MaxWorkers, c.Analysis.Workers)
	}

	if expr := c.Classifier.FutureExpr; expr != "" {
		if err := policy.Check(expr); err != nil {
			add("classifier.future_expr", "%v", err)
		}
	}
	if expr := c.Classifier.StateMachineExpr; expr != "" {
		if err := policy.Check(expr); err != nil {
			add("classifier.state_machine_expr", "%v", err)
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		add("logging.level", "%v", err)
	}

	if len(errs) > 0 {
		return &MultiValidationError{Errors: errs}
	}
	return nil
}
