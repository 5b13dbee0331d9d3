package storage

import (
	"errors"
	"time"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/users"
)

// ErrVersionConflict is returned when a version-guarded battle write loses
// the compare-and-swap race. Callers re-read and recompute.
var ErrVersionConflict = errors.New("battle version conflict")

// Repository is the durable-store contract the battle core depends on:
// transactional read/write plus an optimistic-version compare-and-swap
// primitive for the battle row.
type Repository interface {
	// Users
	GetUser(id string) (*users.User, error)
	// GetRegeneratedUser applies time-based resource regeneration before
	// returning the profile.
	GetRegeneratedUser(id string, now time.Time) (*users.User, error)
	UpdateUser(u *users.User) error
	// FindNearestLevelAI returns the AI profile closest in level to the
	// given one.
	FindNearestLevelAI(level int) (*users.User, error)

	// Battles
	GetBattleByID(id uint) (*battle.Battle, error)
	// InitiateBattleTx inserts the battle row, flips every participant's
	// status to BATTLE and writes the optional history ledger entry in one
	// atomic transaction.
	InitiateBattleTx(b *battle.Battle, participants []*users.User, hist *battle.History) error
	// UpdateBattleCAS persists the battle only if the stored version still
	// equals readVersion; otherwise ErrVersionConflict.
	UpdateBattleCAS(b *battle.Battle, readVersion int64) error
	// CommitTerminalTx folds the updated user rows back and deletes the
	// battle row, guarded by the same version check, in one transaction.
	CommitTerminalTx(b *battle.Battle, readVersion int64, updated []*users.User) error
	// ListStaleBattleIDs returns battles not written since the given
	// instant, for the background AI scanner.
	ListStaleBattleIDs(before time.Time, limit int) ([]uint, error)

	// Action log
	CreateEntry(e *battle.Entry) error
	GetEntries(battleID uint, limit int) ([]battle.Entry, error)

	// Encounter ledger
	CountRecentEncounters(userA, userB string, since time.Time) (int, error)
}
