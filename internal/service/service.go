// Package service orchestrates battles against the durable store: it wraps
// the engine's resolution loop in optimistic-concurrency retries, commits
// results, folds terminal deltas back into user records and publishes
// lightweight notifications for spectators.
package service

import (
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/constants"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/engine"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/grid"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/pusher"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/storage"
)

var (
	ErrBattleNotFound = errors.New("battle not found")
	ErrNotInBattle    = errors.New("user is not part of this battle")
	ErrUserNotFound   = errors.New("user not found")
	// ErrBattleConflict surfaces only after the bounded retries are
	// exhausted; it is a transient infrastructure failure, not user error.
	ErrBattleConflict = errors.New("battle update conflict")
)

// BattleService is the procedure-call surface the UI invokes. All
// collaborators are passed in at construction.
type BattleService struct {
	repo   storage.Repository
	push   pusher.Pusher
	grid   grid.Grid
	policy engine.AIPolicy
	// now is swappable for tests.
	now func() time.Time
	// reads coalesces identical read-only battle syncs per viewer.
	reads singleflight.Group
}

// NewBattleService wires the service with its collaborators.
func NewBattleService(repo storage.Repository, push pusher.Pusher, policy engine.AIPolicy) *BattleService {
	return &BattleService{
		repo:   repo,
		push:   push,
		grid:   grid.New(constants.GridWidth, constants.GridHeight),
		policy: policy,
		now:    time.Now,
	}
}

// BattleChannel names the pusher channel for one battle.
func BattleChannel(battleID uint) string {
	return "battle-" + strconv.FormatUint(uint64(battleID), 10)
}
