// Package policy compiles CEL expressions into future.Classifier predicates.
//
// An expression sees two string variables:
//
//	name  the structure's DW_AT_name
//	tag   the entry tag, e.g. "StructType"
//
// and must evaluate to a bool. The string extension library is loaded, so
// expressions such as
//
//	name.startsWith("{async_fn_env") || name.lowerAscii().contains("future")
//
// are valid. Predicates are only consulted for named structures.
package policy

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
	"github.com/rs/zerolog"

	"github.com/coral-mesh/futurescope/internal/entry"
	"github.com/coral-mesh/futurescope/internal/future"
)

// Variables available to expressions.
const (
	VarName = "name"
	VarTag  = "tag"
)

// Config holds the two optional expressions. An empty expression keeps the
// default name heuristic for that predicate.
type Config struct {
	FutureExpr       string
	StateMachineExpr string
}

// NewEnv returns the CEL environment expressions are compiled against.
func NewEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(VarName, cel.StringType),
		cel.Variable(VarTag, cel.StringType),
		ext.Strings(),
	)
}

// Classifier compiles cfg into a classifier.
func Classifier(cfg Config, logger zerolog.Logger) (future.Classifier, error) {
	logger = logger.With().Str("component", "policy").Logger()

	env, err := NewEnv()
	if err != nil {
		return future.Classifier{}, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	cls := future.DefaultClassifier()
	if cfg.FutureExpr != "" {
		p, err := compile(env, cfg.FutureExpr, logger)
		if err != nil {
			return future.Classifier{}, fmt.Errorf("future expression: %w", err)
		}
		cls.IsFuture = p
	}
	if cfg.StateMachineExpr != "" {
		p, err := compile(env, cfg.StateMachineExpr, logger)
		if err != nil {
			return future.Classifier{}, fmt.Errorf("state machine expression: %w", err)
		}
		cls.IsStateMachine = p
	}
	return cls, nil
}

// Check compiles expr and reports any error without building a predicate.
func Check(expr string) error {
	env, err := NewEnv()
	if err != nil {
		return err
	}
	_, err = program(env, expr)
	return err
}

func program(env *cel.Env, expr string) (cel.Program, error) {
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q must return bool, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build program for %q: %w", expr, err)
	}
	return prg, nil
}

// compile returns a predicate evaluating expr. Evaluation errors count as a
// non-match and are logged at debug level.
func compile(env *cel.Env, expr string, logger zerolog.Logger) (future.Predicate, error) {
	prg, err := program(env, expr)
	if err != nil {
		return nil, err
	}

	return func(e entry.Entry) bool {
		name, ok := future.NamedStruct(e)
		if !ok {
			return false
		}
		out, _, err := prg.Eval(map[string]any{
			VarName: name,
			VarTag:  e.Tag().String(),
		})
		if err != nil {
			logger.Debug().Err(err).Str("expr", expr).Str("name", name).Msg("Policy evaluation failed")
			return false
		}
		match, ok := out.Value().(bool)
		return ok && match
	}, nil
}
