package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/constants"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/grid"
)

// scriptedPolicy always proposes the same action.
type scriptedPolicy struct {
	actionID string
	target   grid.Point
}

func (p scriptedPolicy) ChooseAction(b *battle.Battle, g grid.Grid, actorID string, now time.Time) (string, grid.Point, bool) {
	if p.actionID == "" {
		return "", grid.Point{}, false
	}
	return p.actionID, p.target, true
}

func TestIsOver(t *testing.T) {
	now := time.Now()
	b := newDuel(now)
	if IsOver(b) {
		t.Fatal("two standing sides is not over")
	}
	b.UsersState[1].CurHealth = 0
	if !IsOver(b) {
		t.Fatal("one standing side is over")
	}
}

func TestAlignBattle_AdvancesPastDowns(t *testing.T) {
	now := time.Now()
	b := newDuel(now)
	b.UsersState = append(b.UsersState, battle.Combatant{
		UserID: "u3", Username: "Chiyo", ControllerID: "u1", Level: 3,
		CurHealth: 50, MaxHealth: 50, IsAI: true,
		Longitude: 3, Latitude: 2, ActionPoints: constants.ActionPointsPerRound,
	})
	b.UsersState[0].CurHealth = 0
	b.ActiveUserID = "u1"

	al := AlignBattle(b, "u2")
	if al.State != StateAwaitingActor {
		t.Fatalf("state = %v, want awaiting actor", al.State)
	}
	if al.ActorID != "u2" {
		t.Fatalf("actor = %s, want u2 (next in submission order)", al.ActorID)
	}
	if b.ActiveUserID != "u2" {
		t.Fatalf("stored active = %s, want u2", b.ActiveUserID)
	}
}

func TestAlignBattle_RoundComplete(t *testing.T) {
	now := time.Now()
	b := newDuel(now)
	b.UsersState[0].ActedRound = 1
	b.UsersState[1].ActedRound = 1

	al := AlignBattle(b, "u1")
	if al.State != StateRoundComplete {
		t.Fatalf("state = %v, want round complete", al.State)
	}
}

func TestResolveLoop_StunnedActorSkipsInPlace(t *testing.T) {
	now := time.Now()
	b := newDuel(now)
	b.UsersEffects = append(b.UsersEffects, battle.UserEffect{
		ID: "s1", Kind: battle.EffectStun, CreatorID: "u2", TargetID: "u1",
		Rounds: 2, CreatedRound: 1,
	})
	startLon, startLat := b.UsersState[0].Longitude, b.UsersState[0].Latitude

	res, err := ResolveLoop(b, testGrid(), "u2", nil, scriptedPolicy{}, now.Add(time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Changed {
		t.Fatal("forced skip must mark the battle changed")
	}
	found := false
	for _, d := range res.Descriptions {
		if strings.Contains(d, "stunned and skips") {
			found = true
		}
	}
	if !found {
		t.Fatalf("skip line missing from %v", res.Descriptions)
	}
	if b.ActiveUserID != "u2" {
		t.Fatalf("active = %s, want u2 after skip", b.ActiveUserID)
	}
	// The skip is a pure turn pass; the fighter does not move.
	if b.UsersState[0].Longitude != startLon || b.UsersState[0].Latitude != startLat {
		t.Fatal("forced skip must not move the fighter")
	}
}

func TestResolveLoop_RoundRollover(t *testing.T) {
	now := time.Now()
	b := newDuel(now)
	b.UsersState[0].ActedRound = 1
	b.UsersState[0].ActionPoints = 10
	b.UsersState[1].ActedRound = 1
	b.UsersState[1].ActionPoints = 0

	later := now.Add(time.Minute)
	res, err := ResolveLoop(b, testGrid(), "u1", nil, scriptedPolicy{}, later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Changed {
		t.Fatal("rollover must mark the battle changed")
	}
	if b.Round != 2 {
		t.Fatalf("round = %d, want 2", b.Round)
	}
	if !b.RoundStartedAt.Equal(later) {
		t.Fatal("round start not restamped")
	}
	for i := range b.UsersState {
		if got := b.UsersState[i].ActionPoints; got != constants.ActionPointsPerRound {
			t.Fatalf("fighter %d action points = %d, want full restore", i, got)
		}
	}
}

func TestResolveLoop_RejectsOutOfTurnInput(t *testing.T) {
	now := time.Now()
	b := newDuel(now)
	// u1 is active; u2 submits anyway.
	res, err := ResolveLoop(b, testGrid(), "u2", &UserInput{ActionID: ActionIDAttack, Longitude: 4, Latitude: 2}, scriptedPolicy{}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Notification == "" {
		t.Fatal("expected a rejection notification")
	}
	if res.Changed {
		t.Fatal("rejected input must not change the battle")
	}
	if b.UsersState[0].CurHealth != 100 {
		t.Fatal("battle mutated by rejected input")
	}
}

func TestResolveLoop_HumanActionThenAIChain(t *testing.T) {
	now := time.Now()
	b := newDuel(now)
	b.UsersState[1].IsAI = true

	policy := scriptedPolicy{actionID: ActionIDAttack, target: grid.Point{Longitude: 4, Latitude: 2}}
	res, err := ResolveLoop(b, testGrid(), "u1", &UserInput{ActionID: ActionIDWait}, policy, now.Add(time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Changed {
		t.Fatal("expected resolution to change the battle")
	}
	// u1 waits and the AI attacks, completing round 1; the rollover
	// restores budgets, the AI attacks once more in round 2 and then burns
	// the rest of its turn. Exactly one rollover happens.
	if b.Round != 2 {
		t.Fatalf("round = %d, want 2", b.Round)
	}
	if b.UsersState[0].CurHealth != 70 {
		t.Fatalf("u1 health = %f, want 70 after two AI attacks", b.UsersState[0].CurHealth)
	}
	if b.ActiveUserID != "u1" {
		t.Fatalf("active = %s, want control back with u1", b.ActiveUserID)
	}
}

func TestResolveLoop_LastActorAdvancesRoundOnce(t *testing.T) {
	now := time.Now()
	b := newDuel(now)
	// u2 consumed its turn in an earlier request; u1's wait is the last
	// action of round 1.
	b.UsersState[1].ActedRound = 1

	res, err := ResolveLoop(b, testGrid(), "u1", &UserInput{ActionID: ActionIDWait}, scriptedPolicy{}, now.Add(time.Second))
	if err != nil {
		t.Fatalf("round completion must not error: %v", err)
	}
	if !res.Changed {
		t.Fatal("expected the wait and rollover to change the battle")
	}
	if b.Round != 2 {
		t.Fatalf("round = %d, want exactly one rollover", b.Round)
	}
	for i := range b.UsersState {
		if got := b.UsersState[i].ActionPoints; got != constants.ActionPointsPerRound {
			t.Fatalf("fighter %d action points = %d, want full restore", i, got)
		}
	}
}

func TestResolveLoop_StunSkipAdvancesRoundOnce(t *testing.T) {
	now := time.Now()
	b := newDuel(now)
	// u1 is active and stunned; u2 already acted, so the forced skip is
	// the last turn of round 1.
	b.UsersState[1].ActedRound = 1
	b.UsersEffects = append(b.UsersEffects, battle.UserEffect{
		ID: "s1", Kind: battle.EffectStun, CreatorID: "u2", TargetID: "u1",
		Rounds: 1, CreatedRound: 1,
	})

	res, err := ResolveLoop(b, testGrid(), "u2", nil, scriptedPolicy{}, now.Add(time.Second))
	if err != nil {
		t.Fatalf("forced skip at round end must not error: %v", err)
	}
	if b.Round != 2 {
		t.Fatalf("round = %d, want exactly one rollover", b.Round)
	}
	skips := 0
	for _, d := range res.Descriptions {
		if strings.Contains(d, "stunned and skips") {
			skips++
		}
	}
	if skips != 1 {
		t.Fatalf("skip lines = %d, want exactly one", skips)
	}
}

func TestResolveLoop_ValidationNotificationWithoutMutation(t *testing.T) {
	now := time.Now()
	b := newDuel(now)

	res, err := ResolveLoop(b, testGrid(), "u1", &UserInput{ActionID: ActionIDAttack, Longitude: 10, Latitude: 2}, scriptedPolicy{}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Notification == "" {
		t.Fatal("expected out-of-range notification")
	}
	if b.UsersState[1].CurHealth != 100 {
		t.Fatal("battle mutated by rejected action")
	}
}

func TestResolveLoop_BattleOverIsTerminal(t *testing.T) {
	now := time.Now()
	b := newDuel(now)
	b.UsersState[1].CurHealth = 0

	res, err := ResolveLoop(b, testGrid(), "u1", &UserInput{ActionID: ActionIDWait}, scriptedPolicy{}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Changed {
		t.Fatal("a finished battle must not change")
	}
}

func TestPerformAIAction_PassBurnsTurn(t *testing.T) {
	now := time.Now()
	b := newDuel(now)
	b.UsersState[0].IsAI = true

	outcome, err := PerformAIAction(b, testGrid(), scriptedPolicy{}, "u1", now.Add(time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome == nil || outcome.Description == "" {
		t.Fatal("expected a descriptive outcome for the pass")
	}
	if b.ActiveUserID != "u2" {
		t.Fatalf("active = %s, want u2 after AI pass", b.ActiveUserID)
	}
}

func TestPerformAIAction_IllegalPickBurnsTurn(t *testing.T) {
	now := time.Now()
	b := newDuel(now)
	b.UsersState[0].IsAI = true

	// Attack an empty tile: a validation failure the loop must absorb.
	policy := scriptedPolicy{actionID: ActionIDAttack, target: grid.Point{Longitude: 4, Latitude: 0}}
	outcome, err := PerformAIAction(b, testGrid(), policy, "u1", now.Add(time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(outcome.Description, "hesitates") {
		t.Fatalf("outcome = %q, want a hesitation line", outcome.Description)
	}
	if b.ActiveUserID != "u2" {
		t.Fatalf("active = %s, want u2 after burned turn", b.ActiveUserID)
	}
}
