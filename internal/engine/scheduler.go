package engine

import (
	"fmt"
	"time"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/constants"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/effects"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/grid"
)

// ControlState is the scheduler's view of a battle between commits.
type ControlState int

const (
	StateAwaitingActor ControlState = iota
	StateActorStunnedForcedSkip
	StateRoundComplete
	StateBattleOver
)

func (s ControlState) String() string {
	switch s {
	case StateAwaitingActor:
		return "awaiting_actor"
	case StateActorStunnedForcedSkip:
		return "actor_stunned_forced_skip"
	case StateRoundComplete:
		return "round_complete"
	case StateBattleOver:
		return "battle_over"
	}
	return "unknown"
}

// Alignment is the computed control state plus the currently correct active
// actor.
type Alignment struct {
	State   ControlState
	ActorID string
}

// IsOver reports whether at most one side still has fighters standing.
func IsOver(b *battle.Battle) bool {
	sides := map[string]bool{}
	for _, c := range b.AliveCombatants() {
		sides[c.ControllerID] = true
	}
	return len(sides) <= 1
}

// AlignBattle computes, from the stored active user and round bookkeeping,
// whose turn it really is and whether the round has been fully consumed.
// When the stored active actor can no longer act (down, fled, gone) control
// advances; when the field is empty it defaults to the viewing user.
func AlignBattle(b *battle.Battle, viewerID string) Alignment {
	if IsOver(b) {
		return Alignment{State: StateBattleOver}
	}

	active := b.Combatant(b.ActiveUserID)
	if active == nil || active.CurHealth <= 0 || active.FledBattle || active.LeftBattle {
		next := b.NextActor(b.ActiveUserID)
		if next == "" {
			return Alignment{State: StateBattleOver}
		}
		if v := b.Combatant(viewerID); b.ActiveUserID == "" && v != nil && v.CurHealth > 0 && !v.FledBattle && !v.LeftBattle {
			next = viewerID
		}
		b.ActiveUserID = next
		active = b.Combatant(next)
	}

	// Round completion: every alive fighter has consumed a turn this
	// round. Incrementing Round at rollover resets the check, so a round
	// can complete at most once per increment even when every stamp in
	// the request shares one clock reading.
	progress := true
	for _, c := range b.AliveCombatants() {
		if c.ActedRound < b.Round {
			progress = false
			break
		}
	}
	if progress {
		return Alignment{State: StateRoundComplete, ActorID: active.UserID}
	}

	if effects.IsStunned(b, active.UserID) {
		return Alignment{State: StateActorStunnedForcedSkip, ActorID: active.UserID}
	}
	return Alignment{State: StateAwaitingActor, ActorID: active.UserID}
}

// advanceRound rolls the battle into the next round: effect stacks tick,
// expired instances drop, and every fighter's action budget is restored.
func advanceRound(b *battle.Battle, now time.Time) ([]string, error) {
	lines, err := effects.TickRound(b)
	if err != nil {
		return nil, err
	}
	b.Round++
	b.RoundStartedAt = now
	for i := range b.UsersState {
		c := &b.UsersState[i]
		if c.CurHealth > 0 && !c.FledBattle && !c.LeftBattle {
			c.ActionPoints = constants.ActionPointsPerRound
		}
	}
	return lines, nil
}

// AIPolicy decides one action for an AI-controlled fighter. It is an
// external, replaceable collaborator; returning ok=false means pass.
type AIPolicy interface {
	ChooseAction(b *battle.Battle, g grid.Grid, actorID string, now time.Time) (actionID string, target grid.Point, ok bool)
}

// PerformAIAction drives one AI turn through the same resolution path as a
// human action. A pass burns the turn with a no-op.
func PerformAIAction(b *battle.Battle, g grid.Grid, policy AIPolicy, actorID string, now time.Time) (*ActionOutcome, error) {
	actor := b.Combatant(actorID)
	if actor == nil {
		return nil, fmt.Errorf("AI actor %s not in battle", actorID)
	}
	actionID, target, ok := policy.ChooseAction(b, g, actorID, now)
	if !ok {
		actionID = ActionIDWait
		target = grid.Point{Longitude: actor.Longitude, Latitude: actor.Latitude}
	}
	outcome, _, err := PerformBattleAction(ActionRequest{
		Battle: b, Grid: g,
		ContextUserID: actor.ControllerID, ActorID: actorID,
		ActionID:  actionID,
		Longitude: target.Longitude, Latitude: target.Latitude,
		Now: now,
	})
	if err != nil {
		if IsValidation(err) {
			// A policy that picked an illegal action must not wedge the
			// battle; burn the turn instead.
			EndTurn(b, actor, now)
			return &ActionOutcome{Description: actor.Username + " hesitates"}, nil
		}
		return nil, err
	}
	return outcome, nil
}

// UserInput is the client-supplied part of a perform-action request.
type UserInput struct {
	ActionID  string
	Longitude int
	Latitude  int
}

// LoopResult reports what one resolution pass did to the in-memory copy.
type LoopResult struct {
	Changed bool
	// Notification carries a validation failure to render to the caller;
	// the battle was not mutated by the rejected input (though AI turns in
	// the same pass may still have changed it).
	Notification   string
	Descriptions   []string
	AppliedEffects []battle.UserEffect
}

// loopStepBound caps scheduler iterations per request. Forced skips, round
// rollovers and chained AI turns each consume a step, so the bound is
// comfortably above MaxAIChainedActions while still guaranteeing
// termination.
const loopStepBound = 4 * constants.MaxAIChainedActions

// ResolveLoop drives one request's resolution: it aligns the battle,
// auto-skips stunned actors, rolls completed rounds, applies at most one
// human action and chases AI turns up to the chain cap, then hands control
// back for commit.
func ResolveLoop(b *battle.Battle, g grid.Grid, viewerID string, input *UserInput, policy AIPolicy, now time.Time) (*LoopResult, error) {
	res := &LoopResult{}
	inputConsumed := input == nil
	aiActions := 0

	for step := 0; step < loopStepBound; step++ {
		al := AlignBattle(b, viewerID)
		switch al.State {
		case StateBattleOver:
			return res, nil

		case StateRoundComplete:
			lines, err := advanceRound(b, now)
			if err != nil {
				return nil, err
			}
			res.Descriptions = append(res.Descriptions, lines...)
			res.Changed = true
			continue

		case StateActorStunnedForcedSkip:
			actor := b.Combatant(al.ActorID)
			EndTurn(b, actor, now)
			res.Descriptions = append(res.Descriptions, actor.Username+" is stunned and skips the turn")
			res.Changed = true
			continue

		case StateAwaitingActor:
			actor := b.Combatant(al.ActorID)
			if actor.IsAI && actor.ControllerID == actor.UserID {
				if aiActions >= constants.MaxAIChainedActions {
					return res, nil
				}
				outcome, err := PerformAIAction(b, g, policy, actor.UserID, now)
				if err != nil {
					return nil, err
				}
				aiActions++
				res.Changed = true
				appendOutcome(res, outcome)
				continue
			}
			if !inputConsumed && actor.ControllerID == viewerID {
				inputConsumed = true
				outcome, _, err := PerformBattleAction(ActionRequest{
					Battle: b, Grid: g,
					ContextUserID: viewerID, ActorID: actor.UserID,
					ActionID:  input.ActionID,
					Longitude: input.Longitude, Latitude: input.Latitude,
					Now: now,
				})
				if err != nil {
					if IsValidation(err) {
						res.Notification = err.Error()
						return res, nil
					}
					return nil, err
				}
				res.Changed = true
				appendOutcome(res, outcome)
				continue
			}
			if !inputConsumed {
				// The viewer submitted an action but somebody else's turn is
				// up; reject without touching the battle.
				res.Notification = "it is not your turn"
				return res, nil
			}
			// Waiting on a human who has not submitted anything this pass.
			return res, nil
		}
	}
	return nil, fmt.Errorf("resolution loop exceeded %d steps for battle %d", loopStepBound, b.ID)
}

func appendOutcome(res *LoopResult, outcome *ActionOutcome) {
	if outcome == nil {
		return
	}
	if outcome.Description != "" {
		res.Descriptions = append(res.Descriptions, outcome.Description)
	}
	res.AppliedEffects = append(res.AppliedEffects, outcome.AppliedEffects...)
}
