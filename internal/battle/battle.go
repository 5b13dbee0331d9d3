package battle

import (
	"time"

	"gorm.io/gorm"
)

// Type enumerates the supported battle categories. The category decides
// reward handling and whether a history ledger entry is written at
// initiation (arena fights against AI are not tracked for reward scaling).
type Type string

const (
	TypeArena    Type = "ARENA"
	TypeSparring Type = "SPARRING"
	TypeCombat   Type = "COMBAT"
	TypeEvent    Type = "EVENT"
)

// Battle is the root aggregate for one active encounter. Combatant
// snapshots and effect stacks are embedded as JSON columns: the battle owns
// a point-in-time copy of each participant, never a live foreign-key row,
// so the surrounding profile/economy systems cannot mutate a fighter while
// the encounter is running.
type Battle struct {
	gorm.Model
	Type Type `json:"battle_type" gorm:"size:16"`
	// Version guards every commit. A write is accepted only when the stored
	// value still matches the version read at the start of the operation.
	Version        int64     `json:"version"`
	Round          int       `json:"round"`
	ActiveUserID   string    `json:"active_user_id" gorm:"size:36"`
	RoundStartedAt time.Time `json:"round_started_at"`
	Background     string    `json:"background" gorm:"size:64"`

	UsersState    []Combatant    `json:"users_state" gorm:"serializer:json"`
	UsersEffects  []UserEffect   `json:"users_effects" gorm:"serializer:json"`
	GroundEffects []GroundEffect `json:"ground_effects" gorm:"serializer:json"`
}

// Combatant returns the snapshot for the given user id, or nil.
func (b *Battle) Combatant(userID string) *Combatant {
	for i := range b.UsersState {
		if b.UsersState[i].UserID == userID {
			return &b.UsersState[i]
		}
	}
	return nil
}

// AliveCombatants returns every fighter still standing and present.
func (b *Battle) AliveCombatants() []*Combatant {
	out := make([]*Combatant, 0, len(b.UsersState))
	for i := range b.UsersState {
		c := &b.UsersState[i]
		if c.CurHealth > 0 && !c.FledBattle && !c.LeftBattle {
			out = append(out, c)
		}
	}
	return out
}

// NextActor returns the user id of the fighter whose turn follows the given
// one, walking the snapshot list in submission order and skipping fighters
// that are down or gone. Returns "" when nobody can act.
func (b *Battle) NextActor(afterUserID string) string {
	n := len(b.UsersState)
	if n == 0 {
		return ""
	}
	start := 0
	for i := range b.UsersState {
		if b.UsersState[i].UserID == afterUserID {
			start = i + 1
			break
		}
	}
	for off := 0; off < n; off++ {
		c := &b.UsersState[(start+off)%n]
		if c.CurHealth > 0 && !c.FledBattle && !c.LeftBattle {
			return c.UserID
		}
	}
	return ""
}

// IsFriend reports whether the two fighters are on the same side. Sides are
// defined by the controller: a fighter and the AI minions it controls form
// one side.
func (b *Battle) IsFriend(viewerID, otherID string) bool {
	if viewerID == otherID {
		return true
	}
	v := b.Combatant(viewerID)
	o := b.Combatant(otherID)
	if v == nil || o == nil {
		return false
	}
	return v.ControllerID == o.ControllerID
}
