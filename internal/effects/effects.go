// Package effects converts declarative effect templates into concrete,
// leveled instances and applies the active stacks to a battle each round.
// The kind set is closed: every switch in this package is exhaustive and an
// unknown kind is surfaced as an invariant error rather than ignored,
// since continuing would corrupt battle state.
package effects

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
)

// ErrUnknownKind is wrapped into errors raised for effect kinds outside the
// closed set. Callers treat it as fatal to the request.
var ErrUnknownKind = fmt.Errorf("unknown effect kind")

// PowerAt scales a template's power by casting level. Scaling is monotonic
// in level and the result is never below 1, so a template can never realize
// into an instance with undefined power.
func PowerAt(tpl battle.EffectTemplate, level int) float64 {
	p := tpl.Power + tpl.PowerPerLvl*float64(level)
	if p < 1 {
		p = 1
	}
	return p
}

// Realize builds a concrete user-bound effect instance from a template.
// Deterministic and side-effect-free; the caller appends the result into
// the battle's effect list.
func Realize(tpl battle.EffectTemplate, creatorID, targetID string, level, round int, isNew bool) battle.UserEffect {
	p := PowerAt(tpl, level)
	return battle.UserEffect{
		ID:            uuid.NewString(),
		Kind:          tpl.Kind,
		CreatorID:     creatorID,
		TargetID:      targetID,
		Power:         p,
		OriginalPower: p,
		Rounds:        tpl.Rounds,
		CreatedRound:  round,
		Calculation:   tpl.Calculation,
		Pool:          tpl.Pool,
		Stats:         tpl.Stats,
		Generals:      tpl.Generals,
		IsNew:         isNew,
		CastThisRound: false,
	}
}

// RealizeGround builds a concrete tile-bound effect instance.
func RealizeGround(tpl battle.EffectTemplate, creatorID string, longitude, latitude, level, round int, isNew bool) battle.GroundEffect {
	p := PowerAt(tpl, level)
	return battle.GroundEffect{
		ID:            uuid.NewString(),
		Kind:          tpl.Kind,
		CreatorID:     creatorID,
		Longitude:     longitude,
		Latitude:      latitude,
		Power:         p,
		OriginalPower: p,
		Rounds:        tpl.Rounds,
		CreatedRound:  round,
		Calculation:   tpl.Calculation,
		Pool:          tpl.Pool,
		IsNew:         isNew,
		CastThisRound: false,
	}
}

// IsStunned reports whether an unexpired stun is bound to the fighter.
func IsStunned(b *battle.Battle, userID string) bool {
	for i := range b.UsersEffects {
		e := &b.UsersEffects[i]
		if e.Kind == battle.EffectStun && e.TargetID == userID && !e.Expired(b.Round) {
			return true
		}
	}
	return false
}

// CanFlee reports whether no unexpired flee-prevention binds the fighter.
func CanFlee(b *battle.Battle, userID string) bool {
	for i := range b.UsersEffects {
		e := &b.UsersEffects[i]
		if e.Kind == battle.EffectFleePrevent && e.TargetID == userID && !e.Expired(b.Round) {
			return false
		}
	}
	return true
}

// StatModifier aggregates active buffs and debuffs on the given stat as a
// fractional modifier (0.20 means +20%).
func StatModifier(b *battle.Battle, userID string, stat battle.StatType) float64 {
	mod := 0.0
	for i := range b.UsersEffects {
		e := &b.UsersEffects[i]
		if e.TargetID != userID || e.Expired(b.Round) {
			continue
		}
		if !touchesStat(e, stat) {
			continue
		}
		switch e.Kind {
		case battle.EffectStatBuff:
			mod += e.Power / 100.0
		case battle.EffectStatDebuff:
			mod -= e.Power / 100.0
		}
	}
	return mod
}

func touchesStat(e *battle.UserEffect, stat battle.StatType) bool {
	for _, s := range e.Stats {
		if s == stat {
			return true
		}
	}
	return false
}

// BarrierAt returns the strongest unexpired barrier on the tile, or nil.
func BarrierAt(b *battle.Battle, longitude, latitude int) *battle.GroundEffect {
	var best *battle.GroundEffect
	for i := range b.GroundEffects {
		e := &b.GroundEffects[i]
		if e.Kind != battle.EffectBarrier || e.Expired(b.Round) {
			continue
		}
		if e.Longitude == longitude && e.Latitude == latitude {
			if best == nil || e.Power > best.Power {
				best = e
			}
		}
	}
	return best
}

// DeltaFor computes the pool delta one damage/heal instance produces
// against the target. Static instances apply their power directly; formula
// instances scale it by the creator's highest offence against the target's
// highest defence, clamped so a mismatch never zeroes or explodes the hit.
func DeltaFor(b *battle.Battle, e *battle.UserEffect) (float64, error) {
	switch e.Kind {
	case battle.EffectDamage, battle.EffectDamageOverTime:
		return -magnitude(b, e), nil
	case battle.EffectHeal:
		return magnitude(b, e), nil
	case battle.EffectStatBuff, battle.EffectStatDebuff, battle.EffectBarrier,
		battle.EffectStun, battle.EffectFleePrevent:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
}

func magnitude(b *battle.Battle, e *battle.UserEffect) float64 {
	if e.Calculation != battle.CalcFormula {
		return e.Power
	}
	creator := b.Combatant(e.CreatorID)
	target := b.Combatant(e.TargetID)
	if creator == nil || target == nil {
		return e.Power
	}
	off := creator.HighestOffence * (1 + offenceModifier(b, creator))
	def := target.HighestDefence * (1 + defenceModifier(b, target))
	if def < 1 {
		def = 1
	}
	ratio := off / def
	if ratio < 0.5 {
		ratio = 0.5
	}
	if ratio > 2.0 {
		ratio = 2.0
	}
	return e.Power * ratio
}

func offenceModifier(b *battle.Battle, c *battle.Combatant) float64 {
	m := 0.0
	for _, s := range []battle.StatType{
		battle.StatNinjutsuOffence, battle.StatGenjutsuOffence,
		battle.StatTaijutsuOffence, battle.StatBukijutsuOffence,
	} {
		if c.Offence(s) == c.HighestOffence {
			m = StatModifier(b, c.UserID, s)
			break
		}
	}
	return m
}

func defenceModifier(b *battle.Battle, c *battle.Combatant) float64 {
	m := 0.0
	for _, s := range []battle.StatType{
		battle.StatNinjutsuDefence, battle.StatGenjutsuDefence,
		battle.StatTaijutsuDefence, battle.StatBukijutsuDefence,
	} {
		if c.Defence(s) == c.HighestDefence {
			m = StatModifier(b, c.UserID, s)
			break
		}
	}
	return m
}

// pool resolves the resource pool an instance drains or restores.
func pool(e *battle.UserEffect) string {
	if e.Pool != "" {
		return e.Pool
	}
	return battle.PoolHealth
}

// TickRound applies the active effect stacks at round rollover: over-time
// variants fire once per completed round, expired instances are dropped and
// the transient resolution flags are cleared for the next pass. Returns
// human-readable lines describing what fired.
func TickRound(b *battle.Battle) ([]string, error) {
	lines := make([]string, 0, 8)

	kept := b.UsersEffects[:0]
	for i := range b.UsersEffects {
		e := b.UsersEffects[i]
		// Instances realized during the pass that just ended must not fire
		// again before a full round has elapsed.
		if e.CastThisRound {
			e.CastThisRound = false
			e.IsNew = false
			kept = append(kept, e)
			continue
		}
		switch e.Kind {
		case battle.EffectDamageOverTime, battle.EffectHeal:
			target := b.Combatant(e.TargetID)
			if target != nil && target.CurHealth > 0 {
				delta, err := DeltaFor(b, &e)
				if err != nil {
					return nil, err
				}
				target.ApplyPoolDelta(pool(&e), delta)
				lines = append(lines, tickLine(target.Username, &e, delta))
			}
		case battle.EffectDamage, battle.EffectStatBuff, battle.EffectStatDebuff,
			battle.EffectBarrier, battle.EffectStun, battle.EffectFleePrevent:
			// no per-round firing; these act through queries or at apply time
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
		}
		e.IsNew = false
		if !e.Expired(b.Round + 1) {
			kept = append(kept, e)
		}
	}
	b.UsersEffects = kept

	keptGround := b.GroundEffects[:0]
	for i := range b.GroundEffects {
		e := b.GroundEffects[i]
		if e.CastThisRound {
			e.CastThisRound = false
			e.IsNew = false
			keptGround = append(keptGround, e)
			continue
		}
		// Hazard tiles burn whoever stands on them at round end.
		if e.Kind == battle.EffectDamageOverTime {
			for _, c := range b.AliveCombatants() {
				if c.Longitude == e.Longitude && c.Latitude == e.Latitude {
					c.ApplyPoolDelta(battle.PoolHealth, -e.Power)
					lines = append(lines, fmt.Sprintf("%s takes %.0f damage from the hazardous ground", c.Username, e.Power))
				}
			}
		}
		e.IsNew = false
		if e.Power > 0 && !e.Expired(b.Round+1) {
			keptGround = append(keptGround, e)
		}
	}
	b.GroundEffects = keptGround

	return lines, nil
}

func tickLine(username string, e *battle.UserEffect, delta float64) string {
	if delta < 0 {
		return fmt.Sprintf("%s takes %.0f %s damage over time", username, -delta, pool(e))
	}
	return fmt.Sprintf("%s recovers %.0f %s", username, delta, pool(e))
}
