package service

import (
	"errors"
	"time"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/grid"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/pusher"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/storage"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/users"
)

// mockRepo is an in-memory Repository double. GetBattleByID hands out
// copies so every fetch attempt sees pristine stored state, mirroring a
// real re-read after a lost compare-and-swap.
type mockRepo struct {
	users   map[string]*users.User
	battles map[uint]*battle.Battle

	histories []*battle.History
	entries   []*battle.Entry

	updatedUsers   []*users.User
	terminalCalled bool

	// casFailures makes the first N compare-and-swap commits lose the race.
	casFailures int
	casCalls    int

	encounterRows int
	nextBattleID  uint
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		users:        map[string]*users.User{},
		battles:      map[uint]*battle.Battle{},
		nextBattleID: 1,
	}
}

func cloneBattle(b *battle.Battle) *battle.Battle {
	c := *b
	c.UsersState = append([]battle.Combatant(nil), b.UsersState...)
	c.UsersEffects = append([]battle.UserEffect(nil), b.UsersEffects...)
	c.GroundEffects = append([]battle.GroundEffect(nil), b.GroundEffects...)
	return &c
}

func (m *mockRepo) GetUser(id string) (*users.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockRepo) GetRegeneratedUser(id string, now time.Time) (*users.User, error) {
	u, err := m.GetUser(id)
	if err != nil {
		return nil, err
	}
	u.ApplyRegen(now)
	return u, nil
}

func (m *mockRepo) UpdateUser(u *users.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) FindNearestLevelAI(level int) (*users.User, error) {
	var best *users.User
	bestDiff := 0
	for _, u := range m.users {
		if !u.IsAI {
			continue
		}
		diff := u.Level - level
		if diff < 0 {
			diff = -diff
		}
		if best == nil || diff < bestDiff {
			best = u
			bestDiff = diff
		}
	}
	if best == nil {
		return nil, errors.New("no ai available")
	}
	return best, nil
}

func (m *mockRepo) GetBattleByID(id uint) (*battle.Battle, error) {
	if b, ok := m.battles[id]; ok {
		return cloneBattle(b), nil
	}
	return nil, errors.New("battle not found")
}

func (m *mockRepo) InitiateBattleTx(b *battle.Battle, participants []*users.User, hist *battle.History) error {
	b.ID = m.nextBattleID
	m.nextBattleID++
	m.battles[b.ID] = cloneBattle(b)
	for _, u := range participants {
		u.Status = users.StatusBattle
		id := b.ID
		u.BattleID = &id
		m.users[u.ID] = u
	}
	if hist != nil {
		hist.BattleID = b.ID
		m.histories = append(m.histories, hist)
	}
	return nil
}

func (m *mockRepo) UpdateBattleCAS(b *battle.Battle, readVersion int64) error {
	m.casCalls++
	if m.casCalls <= m.casFailures {
		return storage.ErrVersionConflict
	}
	stored, ok := m.battles[b.ID]
	if !ok || stored.Version != readVersion {
		return storage.ErrVersionConflict
	}
	m.battles[b.ID] = cloneBattle(b)
	return nil
}

func (m *mockRepo) CommitTerminalTx(b *battle.Battle, readVersion int64, updated []*users.User) error {
	stored, ok := m.battles[b.ID]
	if !ok || stored.Version != readVersion {
		return storage.ErrVersionConflict
	}
	delete(m.battles, b.ID)
	m.updatedUsers = updated
	m.terminalCalled = true
	for _, u := range updated {
		m.users[u.ID] = u
	}
	return nil
}

func (m *mockRepo) ListStaleBattleIDs(before time.Time, limit int) ([]uint, error) {
	ids := make([]uint, 0, len(m.battles))
	for id := range m.battles {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockRepo) CreateEntry(e *battle.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockRepo) GetEntries(battleID uint, limit int) ([]battle.Entry, error) {
	out := make([]battle.Entry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.entries[i].BattleID == battleID {
			out = append(out, *m.entries[i])
		}
	}
	return out, nil
}

func (m *mockRepo) CountRecentEncounters(userA, userB string, since time.Time) (int, error) {
	return m.encounterRows, nil
}

// mockPusher records published events.
type mockPusher struct {
	events []pusher.Event
}

func (m *mockPusher) Publish(channel string, payload interface{}) {
	if ev, ok := payload.(pusher.Event); ok {
		m.events = append(m.events, ev)
	}
}

// passPolicy never picks an action.
type passPolicy struct{}

func (passPolicy) ChooseAction(b *battle.Battle, g grid.Grid, actorID string, now time.Time) (string, grid.Point, bool) {
	return "", grid.Point{}, false
}
