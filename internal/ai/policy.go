// Package ai holds the decision module that picks actions for
// AI-controlled fighters. It is deliberately small and replaceable: the
// scheduler only sees the engine.AIPolicy interface, so a smarter policy
// (or a scripted one in tests) drops in without touching resolution code.
package ai

import (
	"time"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/engine"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/grid"
)

// RuleBased attacks the nearest enemy when an affordable offensive action
// reaches it, otherwise closes distance, otherwise passes.
type RuleBased struct{}

// ChooseAction implements engine.AIPolicy.
func (RuleBased) ChooseAction(b *battle.Battle, g grid.Grid, actorID string, now time.Time) (string, grid.Point, bool) {
	actor := b.Combatant(actorID)
	if actor == nil {
		return "", grid.Point{}, false
	}
	enemy := nearestEnemy(b, actor)
	if enemy == nil {
		return "", grid.Point{}, false
	}

	from := grid.Point{Longitude: actor.Longitude, Latitude: actor.Latitude}
	at := grid.Point{Longitude: enemy.Longitude, Latitude: enemy.Latitude}
	dist := grid.Distance(from, at)

	// Prefer the strongest offensive action that reaches and is payable.
	var best *battle.Action
	actions := engine.AvailableActions(actor, now)
	for i := range actions {
		a := &actions[i]
		if !offensive(a) {
			continue
		}
		if a.Range < dist || a.ActionCost > actor.ActionPoints {
			continue
		}
		if a.ChakraCost > actor.CurChakra || a.StaminaCost > actor.CurStamina || a.HealthCost >= actor.CurHealth {
			continue
		}
		if best == nil || a.ActionCost > best.ActionCost {
			best = a
		}
	}
	if best != nil {
		return best.ID, at, true
	}

	// No reachable attack: step toward the enemy if the budget allows and
	// the tile is free.
	if actor.ActionPoints >= actions[0].ActionCost {
		step := g.NeighborToward(from, at)
		if step != from && freeTile(b, step) {
			return engine.ActionIDMove, step, true
		}
	}
	return "", grid.Point{}, false
}

func offensive(a *battle.Action) bool {
	for _, tpl := range a.Effects {
		switch tpl.Kind {
		case battle.EffectDamage, battle.EffectDamageOverTime, battle.EffectStun, battle.EffectStatDebuff:
			return true
		}
	}
	return false
}

func nearestEnemy(b *battle.Battle, actor *battle.Combatant) *battle.Combatant {
	from := grid.Point{Longitude: actor.Longitude, Latitude: actor.Latitude}
	var best *battle.Combatant
	bestDist := 0
	for _, c := range b.AliveCombatants() {
		if c.ControllerID == actor.ControllerID {
			continue
		}
		d := grid.Distance(from, grid.Point{Longitude: c.Longitude, Latitude: c.Latitude})
		if best == nil || d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func freeTile(b *battle.Battle, p grid.Point) bool {
	for _, c := range b.AliveCombatants() {
		if c.Longitude == p.Longitude && c.Latitude == p.Latitude {
			return false
		}
	}
	return true
}
