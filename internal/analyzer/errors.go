package analyzer

import (
	"errors"
	"fmt"
)

// ErrNoRoot is returned for a unit without a root entry. Such units are not
// counted as scanned.
var ErrNoRoot = errors.New("unit has no root entry")

// Stage names where a unit failed.
const (
	StageAnalyze = "analyze"
	StageReport  = "report"
	StageStore   = "store"
)

// UnitError is a failure contained at the unit boundary. It never aborts the
// analysis of other units.
type UnitError struct {
	Seq   int
	Name  string
	Stage string
	Err   error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("unit %d (%s): %s: %v", e.Seq, e.Name, e.Stage, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// PanicError carries a value recovered from a panic during analysis.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
