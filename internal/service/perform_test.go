package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/constants"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/engine"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/users"
)

// storedDuel seeds the repo with an in-progress human-versus-human battle
// and the matching user rows.
func storedDuel(repo *mockRepo, now time.Time) uint {
	id := uint(7)
	b := &battle.Battle{
		Type:           battle.TypeCombat,
		Version:        1,
		Round:          1,
		ActiveUserID:   "u1",
		RoundStartedAt: now,
		UsersState: []battle.Combatant{
			{
				UserID: "u1", Username: "Aiko", ControllerID: "u1", Level: 5,
				CurHealth: 100, MaxHealth: 100, CurChakra: 100, MaxChakra: 100,
				CurStamina: 100, MaxStamina: 100,
				NinjutsuOffence: 50, NinjutsuDefence: 50,
				HighestOffence: 50, HighestDefence: 50,
				Longitude: 4, Latitude: 2, IsOriginal: true,
				ActionPoints: constants.ActionPointsPerRound,
			},
			{
				UserID: "u2", Username: "Botan", ControllerID: "u2", Level: 5,
				CurHealth: 100, MaxHealth: 100, CurChakra: 100, MaxChakra: 100,
				CurStamina: 100, MaxStamina: 100,
				TaijutsuOffence: 50, TaijutsuDefence: 50,
				HighestOffence: 50, HighestDefence: 50,
				Longitude: 5, Latitude: 2, IsOriginal: true,
				ActionPoints: constants.ActionPointsPerRound,
			},
		},
	}
	b.ID = id
	repo.battles[id] = b
	for _, uid := range []string{"u1", "u2"} {
		u := testUser(uid, uid, 5)
		u.Status = users.StatusBattle
		bid := id
		u.BattleID = &bid
		repo.users[uid] = u
	}
	return id
}

func TestPerformAction_CommitsAndPublishes(t *testing.T) {
	now := time.Now()
	repo := newMockRepo()
	id := storedDuel(repo, now)
	svc, push := newTestService(repo)
	svc.now = func() time.Time { return now.Add(time.Second) }

	out, err := svc.PerformAction("u1", id, &engine.UserInput{
		ActionID: engine.ActionIDAttack, Longitude: 5, Latitude: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.UpdateClient || out.Battle == nil {
		t.Fatalf("expected a committed update: %+v", out)
	}

	stored := repo.battles[id]
	if stored.Version != 2 {
		t.Fatalf("stored version = %d, want 2", stored.Version)
	}
	if stored.Combatant("u2").CurHealth != 85 {
		t.Fatalf("stored defender health = %f, want 85", stored.Combatant("u2").CurHealth)
	}
	if len(push.events) != 1 || push.events[0].Version != 2 {
		t.Fatalf("expected one version-2 publish, got %+v", push.events)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(repo.entries))
	}
}

func TestPerformAction_RetriesAfterLostRace(t *testing.T) {
	now := time.Now()
	repo := newMockRepo()
	id := storedDuel(repo, now)
	repo.casFailures = 1
	svc, _ := newTestService(repo)
	svc.now = func() time.Time { return now.Add(time.Second) }

	out, err := svc.PerformAction("u1", id, &engine.UserInput{
		ActionID: engine.ActionIDAttack, Longitude: 5, Latitude: 2,
	})
	if err != nil {
		t.Fatalf("expected the retry to succeed, got %v", err)
	}
	if repo.casCalls != 2 {
		t.Fatalf("cas calls = %d, want 2", repo.casCalls)
	}
	// The retried attempt re-read and re-resolved; damage applies once.
	if repo.battles[id].Combatant("u2").CurHealth != 85 {
		t.Fatalf("health = %f, want 85 after a single applied hit", repo.battles[id].Combatant("u2").CurHealth)
	}
	if !out.UpdateClient {
		t.Fatal("expected an update after the winning retry")
	}
}

func TestPerformAction_SurfacesExhaustedConflict(t *testing.T) {
	now := time.Now()
	repo := newMockRepo()
	id := storedDuel(repo, now)
	repo.casFailures = constants.MaxFetchAttempts * (constants.MaxCommitRetries + 1)
	svc, _ := newTestService(repo)
	svc.now = func() time.Time { return now.Add(time.Second) }

	_, err := svc.PerformAction("u1", id, &engine.UserInput{
		ActionID: engine.ActionIDAttack, Longitude: 5, Latitude: 2,
	})
	if !errors.Is(err, ErrBattleConflict) {
		t.Fatalf("expected ErrBattleConflict, got %v", err)
	}
}

func TestPerformAction_RejectedInputIsNoOp(t *testing.T) {
	now := time.Now()
	repo := newMockRepo()
	id := storedDuel(repo, now)
	svc, push := newTestService(repo)
	svc.now = func() time.Time { return now.Add(time.Second) }

	// u2 submits while u1 is active.
	out, err := svc.PerformAction("u2", id, &engine.UserInput{
		ActionID: engine.ActionIDAttack, Longitude: 4, Latitude: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Notification == "" {
		t.Fatal("expected a rejection notification")
	}
	if out.UpdateClient {
		t.Fatal("a rejected input must not claim an update")
	}
	if repo.battles[id].Version != 1 || repo.casCalls != 0 {
		t.Fatal("nothing may be committed for rejected input")
	}
	if len(push.events) != 0 {
		t.Fatal("nothing may be published for rejected input")
	}
}

func TestPerformAction_NotInBattle(t *testing.T) {
	now := time.Now()
	repo := newMockRepo()
	id := storedDuel(repo, now)
	repo.users["x"] = testUser("x", "Stranger", 5)
	svc, _ := newTestService(repo)

	_, err := svc.PerformAction("x", id, nil)
	if !errors.Is(err, ErrNotInBattle) {
		t.Fatalf("expected ErrNotInBattle, got %v", err)
	}
}

func TestPerformAction_TerminalFoldsUsers(t *testing.T) {
	now := time.Now()
	repo := newMockRepo()
	id := storedDuel(repo, now)
	repo.battles[id].UsersState[1].CurHealth = 10
	repo.encounterRows = 1
	svc, _ := newTestService(repo)
	svc.now = func() time.Time { return now.Add(time.Second) }

	out, err := svc.PerformAction("u1", id, &engine.UserInput{
		ActionID: engine.ActionIDAttack, Longitude: 5, Latitude: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Result == nil || out.Result.Outcome != "win" {
		t.Fatalf("expected a win result, got %+v", out.Result)
	}
	// One ledger row belongs to this battle, so no prior encounters: full
	// scale rewards for a level 5 target.
	if out.Result.Experience != 50 || out.Result.Money != 75 {
		t.Fatalf("rewards = %f/%f, want 50/75", out.Result.Experience, out.Result.Money)
	}

	if !repo.terminalCalled {
		t.Fatal("terminal commit not invoked")
	}
	if _, ok := repo.battles[id]; ok {
		t.Fatal("battle row must be deleted at terminal commit")
	}

	winner := repo.users["u1"]
	if winner.Status != users.StatusAwake || winner.BattleID != nil {
		t.Fatalf("winner not released: %+v", winner)
	}
	if winner.Experience != 50 || winner.Money != 75 {
		t.Fatalf("winner rewards = %f/%f", winner.Experience, winner.Money)
	}

	loser := repo.users["u2"]
	if loser.Status != users.StatusHospital {
		t.Fatalf("loser status = %s, want HOSPITAL", loser.Status)
	}
	if loser.CurHealth != 0 {
		t.Fatalf("loser health = %f, want 0", loser.CurHealth)
	}
	if !loser.ImmunityUntil.After(now) {
		t.Fatal("loser must receive an immunity window")
	}
}

func TestGetBattle_NotFighting(t *testing.T) {
	repo := newMockRepo()
	repo.users["a"] = testUser("a", "Aiko", 5)
	svc, _ := newTestService(repo)

	out, err := svc.GetBattle("a", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.UpdateClient || out.Battle != nil {
		t.Fatalf("expected a null sync, got %+v", out)
	}
}

func TestGetBattle_MasksForViewer(t *testing.T) {
	now := time.Now()
	repo := newMockRepo()
	id := storedDuel(repo, now)
	repo.battles[id].UsersState[1].Jutsus = []battle.Ability{{ID: "j2", Name: "Shadow Bind"}}
	svc, _ := newTestService(repo)
	svc.now = func() time.Time { return now.Add(time.Second) }

	out, err := svc.GetBattle("u1", &id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Battle == nil {
		t.Fatal("expected the battle in the sync")
	}
	if out.Battle.Combatant("u2").Jutsus != nil {
		t.Fatal("opponent equipment leaked through the read path")
	}
}

func TestGetBattleEntries_Capped(t *testing.T) {
	repo := newMockRepo()
	for i := 0; i < constants.BattleEntriesLimit+10; i++ {
		repo.entries = append(repo.entries, &battle.Entry{BattleID: 7, Round: i})
	}
	svc, _ := newTestService(repo)

	entries, err := svc.GetBattleEntries(7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != constants.BattleEntriesLimit {
		t.Fatalf("entries = %d, want %d", len(entries), constants.BattleEntriesLimit)
	}
}
