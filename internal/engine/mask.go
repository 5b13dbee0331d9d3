package engine

import "github.com/Northern-Fayt/TheNinjaRPG/internal/battle"

// MaskBattle produces a redacted copy of the battle safe to return to the
// given viewer: opposing-side equipment, usage logs and bloodline details
// are stripped. The redacted fields are a pure function of viewer identity,
// so masking is idempotent: masking a masked battle changes nothing.
func MaskBattle(b *battle.Battle, viewerID string) *battle.Battle {
	masked := *b

	masked.UsersState = make([]battle.Combatant, len(b.UsersState))
	copy(masked.UsersState, b.UsersState)
	for i := range masked.UsersState {
		c := &masked.UsersState[i]
		if b.IsFriend(viewerID, c.UserID) {
			continue
		}
		c.Items = nil
		c.Jutsus = nil
		c.Bloodline = nil
		c.UsedGenerals = nil
		c.UsedStats = nil
		c.UsedActions = nil
	}

	// Effect instances are visible to everyone once rendered; only the
	// not-yet-rendered flag is cleared for opponents' fresh casts so a
	// spectator cannot infer an unresolved shared effect.
	masked.UsersEffects = make([]battle.UserEffect, len(b.UsersEffects))
	copy(masked.UsersEffects, b.UsersEffects)
	for i := range masked.UsersEffects {
		e := &masked.UsersEffects[i]
		if !b.IsFriend(viewerID, e.CreatorID) {
			e.IsNew = false
			e.CastThisRound = false
		}
	}
	masked.GroundEffects = make([]battle.GroundEffect, len(b.GroundEffects))
	copy(masked.GroundEffects, b.GroundEffects)
	for i := range masked.GroundEffects {
		e := &masked.GroundEffects[i]
		if !b.IsFriend(viewerID, e.CreatorID) {
			e.IsNew = false
			e.CastThisRound = false
		}
	}

	return &masked
}
