package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/constants"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/engine"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/logging"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/pusher"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/storage"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/users"
)

// PerformOutcome is what a perform-action (or read-sync) request returns to
// the caller: the masked battle, the viewer's result if terminal, and any
// notification for rejected input.
type PerformOutcome struct {
	UpdateClient bool             `json:"update_client"`
	Battle       *battle.Battle   `json:"battle,omitempty"`
	Result       *battle.Result   `json:"result,omitempty"`
	Notification string           `json:"notification,omitempty"`
	LogEntries   []string         `json:"log_entries,omitempty"`
}

// PerformAction handles one battle-action request under optimistic
// concurrency: read a fresh snapshot, resolve in memory, commit with a
// version compare-and-swap, and on conflict redo the whole attempt
// (including input re-validation) from scratch. Attempts are bounded; only
// after exhausting them does the conflict surface to the caller.
func (s *BattleService) PerformAction(viewerID string, battleID uint, input *engine.UserInput) (*PerformOutcome, error) {
	var lastErr error
	for fetch := 0; fetch < constants.MaxFetchAttempts; fetch++ {
		out, err := s.attemptPerform(viewerID, battleID, input)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
		logging.Warn("battle commit lost concurrency race; refetching", logging.Fields{
			constants.LogFieldBattleID: battleID,
			constants.LogFieldUserID:   viewerID,
			"fetch_attempt":            fetch + 1,
		})
	}
	return nil, errors.Join(ErrBattleConflict, lastErr)
}

// attemptPerform runs one fetch attempt: resolve and commit, retrying the
// compare-and-swap (with a fresh read each time) up to the inner bound.
func (s *BattleService) attemptPerform(viewerID string, battleID uint, input *engine.UserInput) (*PerformOutcome, error) {
	var lastErr error
	for attempt := 0; attempt <= constants.MaxCommitRetries; attempt++ {
		out, err := s.resolveAndCommit(viewerID, battleID, input)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *BattleService) resolveAndCommit(viewerID string, battleID uint, input *engine.UserInput) (*PerformOutcome, error) {
	now := s.now()
	b, err := s.repo.GetBattleByID(battleID)
	if err != nil {
		return nil, ErrBattleNotFound
	}
	viewer := b.Combatant(viewerID)
	if viewer == nil {
		return nil, ErrNotInBattle
	}
	readVersion := b.Version

	res, err := engine.ResolveLoop(b, s.grid, viewerID, input, s.policy, now)
	if err != nil {
		return nil, err
	}
	if !res.Changed {
		// Nothing to commit: either the input was rejected or it is simply
		// not the viewer's turn yet. Report as a no-op.
		return &PerformOutcome{
			UpdateClient: res.Notification == "",
			Battle:       engine.MaskBattle(b, viewerID),
			Result:       engine.CalcBattleResult(b, viewerID, s.priorEncounters(b, viewerID, now)),
			Notification: res.Notification,
		}, nil
	}

	result := engine.CalcBattleResult(b, viewerID, s.priorEncounters(b, viewerID, now))
	b.Version = readVersion + 1

	if engine.IsOver(b) {
		updated, err := s.foldUsers(b, now)
		if err != nil {
			return nil, err
		}
		if err := s.repo.CommitTerminalTx(b, readVersion, updated); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.UpdateBattleCAS(b, readVersion); err != nil {
			return nil, err
		}
		// Spectators refetch on this nudge; delivery is best-effort and
		// at-most-once, nothing downstream depends on it.
		s.push.Publish(BattleChannel(b.ID), pusher.Event{
			Type:     "battleUpdate",
			BattleID: b.ID,
			Version:  b.Version,
		})
	}

	if len(res.Descriptions) > 0 {
		entry := &battle.Entry{
			BattleID:       b.ID,
			BattleVersion:  b.Version,
			Round:          b.Round,
			Description:    strings.Join(res.Descriptions, "\n"),
			AppliedEffects: res.AppliedEffects,
		}
		if err := s.repo.CreateEntry(entry); err != nil {
			logging.Error("failed to record battle entry", err, logging.Fields{constants.LogFieldBattleID: b.ID})
		}
	}

	return &PerformOutcome{
		UpdateClient: true,
		Battle:       engine.MaskBattle(b, viewerID),
		Result:       result,
		Notification: res.Notification,
		LogEntries:   res.Descriptions,
	}, nil
}

// priorEncounters counts earlier fights between the viewer and the first
// opposing human within the scaling window. The current battle's own
// ledger row (written at initiation) is excluded.
func (s *BattleService) priorEncounters(b *battle.Battle, viewerID string, now time.Time) int {
	if b.Type == battle.TypeArena {
		return 0
	}
	var opponent string
	for i := range b.UsersState {
		c := &b.UsersState[i]
		if c.IsAI || c.UserID == viewerID || b.IsFriend(viewerID, c.UserID) {
			continue
		}
		if c.IsOriginal {
			opponent = c.UserID
			break
		}
	}
	if opponent == "" {
		return 0
	}
	count, err := s.repo.CountRecentEncounters(viewerID, opponent, now.Add(-constants.RewardScalingWindow))
	if err != nil {
		logging.Error("failed to count recent encounters", err, logging.Fields{constants.LogFieldBattleID: b.ID})
		return 0
	}
	if count > 0 {
		count--
	}
	return count
}

// foldUsers folds each original human's snapshot deltas back into the
// durable user record: pools, rewards, status transition and the PvP
// immunity window for the defeated. AI profiles are reset for the next
// challenger.
func (s *BattleService) foldUsers(b *battle.Battle, now time.Time) ([]*users.User, error) {
	var updated []*users.User
	for i := range b.UsersState {
		c := &b.UsersState[i]
		if !c.IsOriginal {
			continue
		}
		u, err := s.repo.GetUser(c.UserID)
		if err != nil {
			return nil, err
		}
		u.BattleID = nil
		u.RegenAt = now
		if u.IsAI {
			u.Status = users.StatusAwake
			u.CurHealth = u.MaxHealth
			u.CurChakra = u.MaxChakra
			u.CurStamina = u.MaxStamina
			updated = append(updated, u)
			continue
		}
		u.CurHealth = c.CurHealth
		u.CurChakra = c.CurChakra
		u.CurStamina = c.CurStamina
		if c.CurHealth <= 0 {
			u.Status = users.StatusHospital
			u.ImmunityUntil = now.Add(constants.ImmunityWindow)
		} else {
			u.Status = users.StatusAwake
		}
		if res := engine.CalcBattleResult(b, c.UserID, s.priorEncounters(b, c.UserID, now)); res != nil {
			u.Experience += res.Experience
			u.Money += res.Money
		}
		updated = append(updated, u)
	}
	return updated, nil
}

// GetBattle reads the viewer's current battle: the state is aligned (idle
// AI turns and stun skips are driven forward and committed) and masked.
// Returns a nil battle when the viewer is not fighting. Concurrent
// identical reads coalesce.
func (s *BattleService) GetBattle(viewerID string, battleID *uint) (*PerformOutcome, error) {
	id := uint(0)
	if battleID != nil {
		id = *battleID
	} else {
		u, err := s.repo.GetUser(viewerID)
		if err != nil {
			return nil, ErrUserNotFound
		}
		if u.BattleID == nil {
			return &PerformOutcome{UpdateClient: false}, nil
		}
		id = *u.BattleID
	}

	key := "battle-" + strconv.FormatUint(uint64(id), 10) + "-" + viewerID
	v, err, _ := s.reads.Do(key, func() (interface{}, error) {
		return s.PerformAction(viewerID, id, nil)
	})
	if err != nil {
		if errors.Is(err, ErrBattleNotFound) {
			// Deleted between the profile read and the fetch: terminal.
			return &PerformOutcome{UpdateClient: false}, nil
		}
		return nil, err
	}
	return v.(*PerformOutcome), nil
}

// GetBattleEntries returns the most recent action log rows for a battle,
// newest first, capped at the configured limit.
func (s *BattleService) GetBattleEntries(battleID uint) ([]battle.Entry, error) {
	return s.repo.GetEntries(battleID, constants.BattleEntriesLimit)
}
