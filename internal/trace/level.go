package trace

import (
	"fmt"
	"strings"
)

// Level is how much of the scope hierarchy gets recorded.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // nothing up front; ring dumps on failure only
	LevelPhase        // driver and pass spans
	LevelDetail       // plus per-unit spans
	LevelDebug        // plus single rewrites
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by String, case-insensitively.
func ParseLevel(s string) (Level, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if name == want {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether spans and points of scope are recorded at l.
// LevelError records nothing up front; the ring dump on failure is its output.
func (l Level) ShouldEmit(scope Scope) bool {
	return scope <= l.deepest()
}

// deepest is the finest scope recorded at l; zero disables everything.
func (l Level) deepest() Scope {
	switch l {
	case LevelPhase:
		return ScopePass
	case LevelDetail:
		return ScopeUnit
	case LevelDebug:
		return ScopeNode
	default:
		return 0
	}
}
