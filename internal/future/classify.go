package future

import (
	"strings"

	"github.com/coral-mesh/futurescope/internal/entry"
)

// Predicate decides whether a named structure entry belongs to a class of types.
// Predicates must be pure: the same entry always yields the same answer.
type Predicate func(e entry.Entry) bool

// Classifier is the policy deciding which structures are future-like and which
// of those are state-machine-like. A nil predicate falls back to the default
// name heuristics.
type Classifier struct {
	IsFuture       Predicate
	IsStateMachine Predicate
}

var (
	futureMarkers       = []string{"Future", "future"}
	stateMachineMarkers = []string{"State", "state"}
)

// DefaultClassifier matches names containing "Future"/"future" and
// "State"/"state" respectively.
func DefaultClassifier() Classifier {
	return Classifier{
		IsFuture:       NameContains(futureMarkers...),
		IsStateMachine: NameContains(stateMachineMarkers...),
	}
}

// Future reports whether e is a named structure accepted by the future predicate.
func (c Classifier) Future(e entry.Entry) bool {
	if _, ok := NamedStruct(e); !ok {
		return false
	}
	if c.IsFuture == nil {
		return IsFutureLike(e)
	}
	return c.IsFuture(e)
}

// StateMachine reports whether e is a named structure accepted by the state
// machine predicate. It is evaluated independently of Future.
func (c Classifier) StateMachine(e entry.Entry) bool {
	if _, ok := NamedStruct(e); !ok {
		return false
	}
	if c.IsStateMachine == nil {
		return IsStateMachineLike(e)
	}
	return c.IsStateMachine(e)
}

// IsFutureLike applies the default future heuristic.
func IsFutureLike(e entry.Entry) bool {
	return NameContains(futureMarkers...)(e)
}

// IsStateMachineLike applies the default state machine heuristic.
func IsStateMachineLike(e entry.Entry) bool {
	return NameContains(stateMachineMarkers...)(e)
}

// NameContains returns a predicate accepting named structures whose name
// contains any of the substrings. Matching is case-sensitive.
func NameContains(substrs ...string) Predicate {
	return func(e entry.Entry) bool {
		name, ok := NamedStruct(e)
		if !ok {
			return false
		}
		for _, s := range substrs {
			if strings.Contains(name, s) {
				return true
			}
		}
		return false
	}
}

// NamedStruct returns the name of e when e is a structure type carrying a name.
func NamedStruct(e entry.Entry) (string, bool) {
	if !entry.IsStruct(e) {
		return "", false
	}
	return e.Name()
}
