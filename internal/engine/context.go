package engine

import (
	"strings"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
)

// ValidationError is a user-caused, battle-preserving failure: bad target,
// insufficient resources, cooldown, not your turn. The battle is left
// untouched and the caller renders Reason as a notification.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

func validationf(reason string) error {
	return &ValidationError{Reason: reason}
}

// ActionOutcome reports what one resolved action did: a human-readable
// description plus the structured list of effects it realized.
type ActionOutcome struct {
	Description    string
	AppliedEffects []battle.UserEffect
}

// --- Resolution context -------------------------------------------------

// resolutionContext accumulates descriptions and applied effects while one
// request's actions resolve against the in-memory battle copy.
type resolutionContext struct {
	b       *battle.Battle
	lines   []string
	applied []battle.UserEffect
}

func newResolutionContext(b *battle.Battle) *resolutionContext {
	return &resolutionContext{b: b, lines: make([]string, 0, 8)}
}

func (rc *resolutionContext) add(line string) { rc.lines = append(rc.lines, line) }

func (rc *resolutionContext) record(e battle.UserEffect) {
	rc.applied = append(rc.applied, e)
}

func (rc *resolutionContext) joinLines() string {
	return strings.Join(rc.lines, "\n")
}
