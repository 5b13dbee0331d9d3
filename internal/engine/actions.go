package engine

import (
	"time"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/constants"
)

// Built-in action ids shared with clients.
const (
	ActionIDMove   = "move"
	ActionIDAttack = "attack"
	ActionIDDefend = "defend"
	ActionIDFlee   = "flee"
	ActionIDWait   = "wait"
)

// basicActions returns the choices every fighter always has, independent of
// equipment.
func basicActions() []battle.Action {
	return []battle.Action{
		{
			ID: ActionIDMove, Name: "Move", Kind: battle.ActionMove,
			ActionCost: constants.MoveActionCost, Range: constants.MoveRange,
		},
		{
			ID: ActionIDAttack, Name: "Basic Attack", Kind: battle.ActionBasicAttack,
			ActionCost: constants.AttackActionCost, Range: constants.BasicAttackRange,
			Effects: []battle.EffectTemplate{{
				Kind:        battle.EffectDamage,
				Power:       10,
				PowerPerLvl: 1,
				Calculation: battle.CalcFormula,
				Pool:        battle.PoolHealth,
			}},
		},
		{
			ID: ActionIDDefend, Name: "Defend", Kind: battle.ActionDefend,
			ActionCost: constants.DefendActionCost, Range: 0,
			Effects: []battle.EffectTemplate{{
				Kind:        battle.EffectStatBuff,
				Power:       20,
				Rounds:      1,
				Calculation: battle.CalcStatic,
				Stats: []battle.StatType{
					battle.StatNinjutsuDefence, battle.StatGenjutsuDefence,
					battle.StatTaijutsuDefence, battle.StatBukijutsuDefence,
				},
			}},
		},
		{
			ID: ActionIDFlee, Name: "Flee", Kind: battle.ActionFlee,
			ActionCost: constants.FleeActionCost, Range: 0,
		},
		{
			ID: ActionIDWait, Name: "Wait", Kind: battle.ActionWait,
			ActionCost: 0, Range: 0,
		},
	}
}

// abilityAction converts an equipped item or jutsu into a performable
// action.
func abilityAction(a *battle.Ability) battle.Action {
	kind := battle.ActionJutsu
	if a.Kind == battle.AbilityItem {
		kind = battle.ActionItem
	}
	cost := a.ActionCost
	if cost <= 0 {
		cost = constants.DefaultAbilityCost
	}
	return battle.Action{
		ID:          a.ID,
		Name:        a.Name,
		Kind:        kind,
		ActionCost:  cost,
		ChakraCost:  a.ChakraCost,
		StaminaCost: a.StaminaCost,
		HealthCost:  a.HealthCost,
		Range:       a.Range,
		Effects:     a.Effects,
		Ability:     a,
	}
}

// AvailableActions computes the action set a fighter may currently pick
// from: the built-in basics plus every equipped item and jutsu whose
// cooldown has elapsed and whose resource cost fits the fighter's pools.
func AvailableActions(c *battle.Combatant, now time.Time) []battle.Action {
	out := basicActions()
	for i := range c.Items {
		a := &c.Items[i]
		if a.OnCooldown(now) {
			continue
		}
		out = append(out, abilityAction(a))
	}
	for i := range c.Jutsus {
		a := &c.Jutsus[i]
		if a.OnCooldown(now) {
			continue
		}
		out = append(out, abilityAction(a))
	}
	return out
}

// findAction locates an action by id in the fighter's full set, including
// entries currently on cooldown so the caller can distinguish "unknown"
// from "on cooldown".
func findAction(c *battle.Combatant, actionID string) (battle.Action, bool) {
	for _, a := range basicActions() {
		if a.ID == actionID {
			return a, true
		}
	}
	for i := range c.Items {
		if c.Items[i].ID == actionID {
			return abilityAction(&c.Items[i]), true
		}
	}
	for i := range c.Jutsus {
		if c.Jutsus[i].ID == actionID {
			return abilityAction(&c.Jutsus[i]), true
		}
	}
	return battle.Action{}, false
}
