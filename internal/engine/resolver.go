package engine

import (
	"fmt"
	"time"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/constants"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/effects"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/grid"
)

// ActionRequest carries one discrete choice against a battle: the acting
// fighter, the chosen action and its target tile, plus the viewer on whose
// behalf the request runs.
type ActionRequest struct {
	Battle        *battle.Battle
	Grid          grid.Grid
	ContextUserID string
	ActorID       string
	ActionID      string
	Longitude     int
	Latitude      int
	Now           time.Time
}

// PerformBattleAction validates and applies one action. On success the
// battle is mutated and the outcome plus a turn-ended flag are returned; on
// a ValidationError the battle is guaranteed untouched.
func PerformBattleAction(req ActionRequest) (*ActionOutcome, bool, error) {
	b := req.Battle
	actor := b.Combatant(req.ActorID)
	if actor == nil {
		return nil, false, validationf("you are not part of this battle")
	}
	if b.ActiveUserID != actor.UserID {
		return nil, false, validationf("it is not your turn")
	}
	if req.ContextUserID != actor.ControllerID {
		return nil, false, validationf("it is not your turn")
	}
	if actor.CurHealth <= 0 || actor.FledBattle || actor.LeftBattle {
		return nil, false, validationf("you are in no state to act")
	}

	action, known := findAction(actor, req.ActionID)
	if !known {
		return nil, false, validationf("that action is not available")
	}
	if action.Ability != nil && action.Ability.OnCooldown(req.Now) {
		return nil, false, validationf(fmt.Sprintf("%s is on cooldown", action.Name))
	}
	if effects.IsStunned(b, actor.UserID) && action.Kind != battle.ActionWait {
		return nil, false, validationf("you are stunned and cannot act")
	}
	if actor.ActionPoints < action.ActionCost {
		return nil, false, validationf("not enough action points")
	}
	if actor.CurChakra < action.ChakraCost {
		return nil, false, validationf("insufficient chakra")
	}
	if actor.CurStamina < action.StaminaCost {
		return nil, false, validationf("insufficient stamina")
	}
	if actor.CurHealth <= action.HealthCost {
		return nil, false, validationf("insufficient health")
	}

	from := grid.Point{Longitude: actor.Longitude, Latitude: actor.Latitude}
	target := grid.Point{Longitude: req.Longitude, Latitude: req.Latitude}
	if action.Range == 0 {
		// Self-targeted actions ignore client coordinates entirely.
		target = from
	}
	// Out-of-bounds coordinates indicate a broken caller, not a bad pick;
	// continuing would corrupt positions.
	if !req.Grid.InBounds(target.Longitude, target.Latitude) {
		return nil, false, fmt.Errorf("coordinate (%d,%d) is outside the battle grid", target.Longitude, target.Latitude)
	}
	if grid.Distance(from, target) > action.Range {
		return nil, false, validationf("target is out of range")
	}

	rc := newResolutionContext(b)
	if err := applyAction(rc, req.Grid, actor, &action, target, req.Now); err != nil {
		return nil, false, err
	}

	// Costs and cooldown only after the action fully applied.
	actor.ActionPoints -= action.ActionCost
	actor.ApplyPoolDelta(battle.PoolChakra, -action.ChakraCost)
	actor.ApplyPoolDelta(battle.PoolStamina, -action.StaminaCost)
	actor.ApplyPoolDelta(battle.PoolHealth, -action.HealthCost)
	if action.Ability != nil {
		action.Ability.UpdatedAt = req.Now
	}
	actor.RecordAction(action.ID, b.Round, req.Now)

	turnEnded := action.Kind == battle.ActionWait || action.Kind == battle.ActionFlee ||
		actor.ActionPoints < constants.MoveActionCost
	if turnEnded {
		EndTurn(b, actor, req.Now)
	}

	return &ActionOutcome{Description: rc.joinLines(), AppliedEffects: rc.applied}, turnEnded, nil
}

// EndTurn stamps turn consumption for the actor and hands the battle to the
// next fighter in submission order.
func EndTurn(b *battle.Battle, actor *battle.Combatant, now time.Time) {
	actor.ActedRound = b.Round
	actor.ActedAt = now
	b.ActiveUserID = b.NextActor(actor.UserID)
}

// applyAction mutates the battle for one validated action. Validation that
// depends on the action kind (occupancy, needing a fighter on the tile)
// happens here, before any mutation.
func applyAction(rc *resolutionContext, g grid.Grid, actor *battle.Combatant, action *battle.Action, target grid.Point, now time.Time) error {
	b := rc.b
	switch action.Kind {
	case battle.ActionMove:
		if occupantAt(b, target) != nil {
			return validationf("that tile is occupied")
		}
		actor.Longitude = target.Longitude
		actor.Latitude = target.Latitude
		actor.UsedGenerals = append(actor.UsedGenerals, battle.GeneralSpeed)
		rc.add(fmt.Sprintf("%s moves to (%d,%d)", actor.Username, target.Longitude, target.Latitude))
		return nil

	case battle.ActionFlee:
		if !effects.CanFlee(b, actor.UserID) {
			return validationf("you are prevented from fleeing")
		}
		actor.FledBattle = true
		rc.add(fmt.Sprintf("%s flees the battle", actor.Username))
		return nil

	case battle.ActionWait:
		rc.add(fmt.Sprintf("%s waits", actor.Username))
		return nil

	case battle.ActionDefend:
		return applyTemplates(rc, actor, action, actor, target, now)

	case battle.ActionBasicAttack, battle.ActionItem, battle.ActionJutsu:
		subject := occupantAt(b, target)
		if needsSubject(action) && subject == nil {
			return validationf("there is nobody on that tile")
		}
		return applyTemplates(rc, actor, action, subject, target, now)
	}
	return fmt.Errorf("unknown action kind %q", action.Kind)
}

// needsSubject reports whether any of the action's templates bind to a
// fighter rather than a tile.
func needsSubject(action *battle.Action) bool {
	for _, tpl := range action.Effects {
		if !tpl.Ground {
			return true
		}
	}
	return false
}

// applyTemplates realizes every template on the action against the subject
// or tile. Instant damage and heals fire immediately; everything else joins
// the battle's effect stacks flagged cast-this-round so it cannot fire
// twice within this resolution pass.
func applyTemplates(rc *resolutionContext, actor *battle.Combatant, action *battle.Action, subject *battle.Combatant, target grid.Point, now time.Time) error {
	b := rc.b
	for _, tpl := range action.Effects {
		if tpl.Ground {
			ge := effects.RealizeGround(tpl, actor.UserID, target.Longitude, target.Latitude, actor.Level, b.Round, true)
			ge.CastThisRound = true
			b.GroundEffects = append(b.GroundEffects, ge)
			rc.add(fmt.Sprintf("%s places %s on (%d,%d)", actor.Username, string(tpl.Kind), target.Longitude, target.Latitude))
			continue
		}
		if subject == nil {
			return validationf("there is nobody on that tile")
		}
		e := effects.Realize(tpl, actor.UserID, subject.UserID, actor.Level, b.Round, true)
		e.CastThisRound = true
		switch e.Kind {
		case battle.EffectDamage:
			if err := applyInstantDamage(rc, actor, subject, &e, target); err != nil {
				return err
			}
		case battle.EffectHeal:
			delta, err := effects.DeltaFor(b, &e)
			if err != nil {
				return err
			}
			subject.ApplyPoolDelta(poolOf(&e), delta)
			rc.record(e)
			rc.add(fmt.Sprintf("%s heals %s for %.0f", actor.Username, subject.Username, delta))
		case battle.EffectDamageOverTime, battle.EffectStatBuff, battle.EffectStatDebuff,
			battle.EffectStun, battle.EffectFleePrevent:
			b.UsersEffects = append(b.UsersEffects, e)
			rc.record(e)
			rc.add(fmt.Sprintf("%s is affected by %s from %s", subject.Username, string(e.Kind), actor.Username))
		case battle.EffectBarrier:
			// A barrier template without the ground flag still lands on the
			// target tile.
			ge := effects.RealizeGround(tpl, actor.UserID, target.Longitude, target.Latitude, actor.Level, b.Round, true)
			ge.CastThisRound = true
			b.GroundEffects = append(b.GroundEffects, ge)
			rc.add(fmt.Sprintf("%s raises a barrier on (%d,%d)", actor.Username, target.Longitude, target.Latitude))
		default:
			return fmt.Errorf("%w: %q", effects.ErrUnknownKind, e.Kind)
		}
	}
	recordSchoolUsage(actor)
	return nil
}

// applyInstantDamage fires a direct damage instance, letting any barrier on
// the target tile absorb its share first.
func applyInstantDamage(rc *resolutionContext, actor, subject *battle.Combatant, e *battle.UserEffect, target grid.Point) error {
	b := rc.b
	delta, err := effects.DeltaFor(b, e)
	if err != nil {
		return err
	}
	dmg := -delta
	if barrier := effects.BarrierAt(b, target.Longitude, target.Latitude); barrier != nil {
		absorbed := barrier.Power
		if absorbed > dmg {
			absorbed = dmg
		}
		barrier.Power -= absorbed
		dmg -= absorbed
		rc.add(fmt.Sprintf("A barrier absorbs %.0f damage", absorbed))
	}
	subject.ApplyPoolDelta(battle.PoolHealth, -dmg)
	e.Power = dmg
	rc.record(*e)
	rc.add(fmt.Sprintf("%s hits %s for %.0f damage", actor.Username, subject.Username, dmg))
	if subject.CurHealth <= 0 {
		rc.add(fmt.Sprintf("%s is defeated", subject.Username))
	}
	return nil
}

// recordSchoolUsage appends the stat school and general the fighter leaned
// on, feeding post-battle experience distribution.
func recordSchoolUsage(actor *battle.Combatant) {
	schools := []struct {
		stat    battle.StatType
		general battle.GeneralType
		value   float64
	}{
		{battle.StatNinjutsuOffence, battle.GeneralIntelligence, actor.NinjutsuOffence},
		{battle.StatGenjutsuOffence, battle.GeneralWillpower, actor.GenjutsuOffence},
		{battle.StatTaijutsuOffence, battle.GeneralSpeed, actor.TaijutsuOffence},
		{battle.StatBukijutsuOffence, battle.GeneralStrength, actor.BukijutsuOffence},
	}
	for _, s := range schools {
		if s.value == actor.HighestOffence {
			actor.UsedStats = append(actor.UsedStats, s.stat)
			actor.UsedGenerals = append(actor.UsedGenerals, s.general)
			return
		}
	}
}

func occupantAt(b *battle.Battle, p grid.Point) *battle.Combatant {
	for _, c := range b.AliveCombatants() {
		if c.Longitude == p.Longitude && c.Latitude == p.Latitude {
			return c
		}
	}
	return nil
}

func poolOf(e *battle.UserEffect) string {
	if e.Pool != "" {
		return e.Pool
	}
	return battle.PoolHealth
}
