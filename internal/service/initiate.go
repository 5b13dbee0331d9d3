package service

import (
	"fmt"
	"math/rand"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/constants"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/effects"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/logging"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/users"
)

// InitiateResult is the structured outcome of a battle initiation attempt.
// Precondition failures set Success=false with a human-readable reason and
// write nothing; only infrastructure problems surface as errors.
type InitiateResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	BattleID uint   `json:"battle_id,omitempty"`
}

func failure(msg string) *InitiateResult {
	return &InitiateResult{Success: false, Message: msg}
}

// InitiateBattle loads both participants with regeneration applied,
// validates eligibility, seeds the battlefield and inserts the battle row,
// participant status flips and the history ledger entry in one atomic
// transaction.
func (s *BattleService) InitiateBattle(attackerID, defenderID string, battleType battle.Type) (*InitiateResult, error) {
	now := s.now()

	attacker, err := s.repo.GetRegeneratedUser(attackerID, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, attackerID)
	}
	defender, err := s.repo.GetRegeneratedUser(defenderID, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, defenderID)
	}

	if attacker.Status != users.StatusAwake {
		if attacker.Status == users.StatusBattle {
			return failure("You are already in a battle"), nil
		}
		return failure("You must be awake to start a fight"), nil
	}
	if defender.Status != users.StatusAwake {
		if defender.Status == users.StatusBattle {
			return failure("Your target is already in a battle"), nil
		}
		return failure("Your target is not available for combat"), nil
	}
	if battleType == battle.TypeCombat && now.Before(defender.ImmunityUntil) {
		return failure("Your target is immune from attacks"), nil
	}

	defSnap := users.Snapshot(defender, defender.ID, true, now)
	defSnap.Longitude = constants.DefenderStartLongitude
	defSnap.Latitude = constants.DefenderStartLatitude
	atkSnap := users.Snapshot(attacker, attacker.ID, true, now)
	atkSnap.Longitude = constants.AttackerStartLongitude
	atkSnap.Latitude = constants.AttackerStartLatitude
	defSnap.ActionPoints = constants.ActionPointsPerRound
	atkSnap.ActionPoints = constants.ActionPointsPerRound

	b := &battle.Battle{
		Type:           battleType,
		Version:        1,
		Round:          1,
		ActiveUserID:   attacker.ID,
		RoundStartedAt: now,
		UsersState:     []battle.Combatant{defSnap, atkSnap},
	}

	// Lineage and passive item effects live for the whole battle; they are
	// realized once here, already rendered (not new) and free to fire in
	// the first round.
	for i := range b.UsersState {
		realizePassives(b, &b.UsersState[i])
	}
	placeGroundHazards(b)

	// Every non-arena initiation leaves an encounter ledger row; arena
	// bouts are ephemeral and never feed reward scaling.
	var hist *battle.History
	if battleType != battle.TypeArena {
		hist = &battle.History{AttackerID: attacker.ID, DefenderID: defender.ID}
	}

	if err := s.repo.InitiateBattleTx(b, []*users.User{attacker, defender}, hist); err != nil {
		return nil, err
	}
	logging.Info("battle initiated", logging.Fields{
		constants.LogFieldBattleID: b.ID,
		"battle_type":              string(battleType),
		"attacker":                 attacker.ID,
		"defender":                 defender.ID,
	})
	return &InitiateResult{Success: true, Message: "Battle started", BattleID: b.ID}, nil
}

func realizePassives(b *battle.Battle, c *battle.Combatant) {
	if c.Bloodline != nil {
		for _, tpl := range c.Bloodline.Effects {
			b.UsersEffects = append(b.UsersEffects, effects.Realize(tpl, c.UserID, c.UserID, c.Level, b.Round, false))
		}
	}
	// Items with no action cost are worn, not used; their effects apply as
	// passives for the whole fight.
	for _, item := range c.Items {
		if item.ActionCost != 0 {
			continue
		}
		for _, tpl := range item.Effects {
			b.UsersEffects = append(b.UsersEffects, effects.Realize(tpl, c.UserID, c.UserID, c.Level, b.Round, false))
		}
	}
}

// placeGroundHazards scatters damaging tiles across the field, avoiding
// fighter starting positions.
func placeGroundHazards(b *battle.Battle) {
	occupied := func(lon, lat int) bool {
		for i := range b.UsersState {
			if b.UsersState[i].Longitude == lon && b.UsersState[i].Latitude == lat {
				return true
			}
		}
		return false
	}
	placed := 0
	for tries := 0; placed < constants.GroundHazardCount && tries < 50; tries++ {
		lon := rand.Intn(constants.GridWidth)
		lat := rand.Intn(constants.GridHeight)
		if occupied(lon, lat) {
			continue
		}
		tpl := battle.EffectTemplate{
			Kind:        battle.EffectDamageOverTime,
			Power:       5,
			Calculation: battle.CalcStatic,
			Pool:        battle.PoolHealth,
			Ground:      true,
		}
		b.GroundEffects = append(b.GroundEffects, effects.RealizeGround(tpl, "", lon, lat, 1, b.Round, false))
		placed++
	}
}
