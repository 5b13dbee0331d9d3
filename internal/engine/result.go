package engine

import "github.com/Northern-Fayt/TheNinjaRPG/internal/battle"

// RewardScaling dampens repeated-encounter rewards: n prior encounters in
// the trailing window yields a 1/(n+1) multiplier.
func RewardScaling(priorEncounters int) float64 {
	if priorEncounters < 0 {
		priorEncounters = 0
	}
	return 1.0 / float64(priorEncounters+1)
}

// sideDown reports whether every listed fighter is at 0 health or has
// fled/left the battle.
func sideDown(fighters []*battle.Combatant) bool {
	for _, c := range fighters {
		if c.CurHealth > 0 && !c.FledBattle && !c.LeftBattle {
			return false
		}
	}
	return true
}

// sideLeft counts fighters still standing on a side.
func sideLeft(fighters []*battle.Combatant) int {
	n := 0
	for _, c := range fighters {
		if c.CurHealth > 0 && !c.FledBattle && !c.LeftBattle {
			n++
		}
	}
	return n
}

// CalcBattleResult determines whether the battle has ended for the viewing
// user. It returns nil while the fight is ongoing for that viewer, or the
// outcome with reward deltas scaled by the repeat-encounter multiplier.
// Deterministic given battle state; any randomness lives upstream in action
// resolution and AI choice.
func CalcBattleResult(b *battle.Battle, viewerID string, priorEncounters int) *battle.Result {
	viewer := b.Combatant(viewerID)
	if viewer == nil {
		return nil
	}

	friends := make([]*battle.Combatant, 0, len(b.UsersState))
	targets := make([]*battle.Combatant, 0, len(b.UsersState))
	for i := range b.UsersState {
		c := &b.UsersState[i]
		if b.IsFriend(viewerID, c.UserID) {
			friends = append(friends, c)
		} else {
			targets = append(targets, c)
		}
	}

	friendsDown := sideDown(friends)
	targetsDown := sideDown(targets)
	if !friendsDown && !targetsDown {
		return nil
	}

	res := &battle.Result{
		FriendsLeft: sideLeft(friends),
		TargetsLeft: sideLeft(targets),
	}
	scale := RewardScaling(priorEncounters)

	switch {
	case viewer.FledBattle:
		res.Outcome = "fled"
	case targetsDown && !friendsDown:
		res.Outcome = "win"
		for _, t := range targets {
			res.Experience += float64(t.Level) * 10 * scale
			res.Money += float64(t.Level) * 15 * scale
		}
	default:
		res.Outcome = "loss"
	}
	return res
}
