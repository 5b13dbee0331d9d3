// Package users is the profile-store collaborator the battle core consumes.
// The core never reads live user rows during a fight; it takes a
// regenerated snapshot at initiation and folds deltas back when the battle
// ends.
package users

import (
	"time"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
)

// Status is the durable activity state guarding a user's availability.
type Status string

const (
	StatusAwake    Status = "AWAKE"
	StatusBattle   Status = "BATTLE"
	StatusHospital Status = "HOSPITAL"
)

// User is the durable profile record.
type User struct {
	ID        string `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Username string `json:"username" gorm:"size:32;uniqueIndex"`
	Status   Status `json:"status" gorm:"size:16;index"`
	IsAI     bool   `json:"is_ai" gorm:"index"`
	Level    int    `json:"level"`

	VillageID string `json:"village_id" gorm:"size:36"`
	Sector    int    `json:"sector"`
	Longitude int    `json:"longitude"`
	Latitude  int    `json:"latitude"`

	CurHealth  float64 `json:"cur_health"`
	MaxHealth  float64 `json:"max_health"`
	CurChakra  float64 `json:"cur_chakra"`
	MaxChakra  float64 `json:"max_chakra"`
	CurStamina float64 `json:"cur_stamina"`
	MaxStamina float64 `json:"max_stamina"`

	Strength     float64 `json:"strength"`
	Intelligence float64 `json:"intelligence"`
	Willpower    float64 `json:"willpower"`
	Speed        float64 `json:"speed"`

	NinjutsuOffence  float64 `json:"ninjutsu_offence"`
	NinjutsuDefence  float64 `json:"ninjutsu_defence"`
	GenjutsuOffence  float64 `json:"genjutsu_offence"`
	GenjutsuDefence  float64 `json:"genjutsu_defence"`
	TaijutsuOffence  float64 `json:"taijutsu_offence"`
	TaijutsuDefence  float64 `json:"taijutsu_defence"`
	BukijutsuOffence float64 `json:"bukijutsu_offence"`
	BukijutsuDefence float64 `json:"bukijutsu_defence"`

	Experience float64 `json:"experience"`
	Money      float64 `json:"money"`

	// RegenRate is pool recovery per minute while out of battle; RegenAt is
	// the last instant regeneration was applied up to.
	RegenRate float64   `json:"regen_rate"`
	RegenAt   time.Time `json:"regen_at"`

	// ImmunityUntil shields a freshly defeated user from PvP initiation.
	ImmunityUntil time.Time `json:"immunity_until"`

	// BattleID is set while Status is BATTLE.
	BattleID *uint `json:"battle_id"`

	Items     []battle.Ability  `json:"items" gorm:"serializer:json"`
	Jutsus    []battle.Ability  `json:"jutsus" gorm:"serializer:json"`
	Bloodline *battle.Bloodline `json:"bloodline,omitempty" gorm:"serializer:json"`
}

// ApplyRegen advances the user's pools by the time elapsed since RegenAt.
// Pure in-memory; the caller decides whether to persist.
func (u *User) ApplyRegen(now time.Time) {
	if u.RegenAt.IsZero() || !now.After(u.RegenAt) {
		u.RegenAt = now
		return
	}
	minutes := now.Sub(u.RegenAt).Minutes()
	gain := u.RegenRate * minutes
	u.CurHealth = clamp(u.CurHealth+gain, u.MaxHealth)
	u.CurChakra = clamp(u.CurChakra+gain, u.MaxChakra)
	u.CurStamina = clamp(u.CurStamina+gain, u.MaxStamina)
	u.RegenAt = now
}

func clamp(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// Snapshot copies the user into a battle-scoped combatant. Ability cooldown
// clocks are rewound so remaining out-of-battle cooldown carries in, and
// the highest offence/defence derivation is fixed here for the whole fight.
func Snapshot(u *User, controllerID string, isOriginal bool, now time.Time) battle.Combatant {
	c := battle.Combatant{
		UserID:       u.ID,
		Username:     u.Username,
		ControllerID: controllerID,
		VillageID:    u.VillageID,
		Level:        u.Level,

		CurHealth: u.CurHealth, MaxHealth: u.MaxHealth,
		CurChakra: u.CurChakra, MaxChakra: u.MaxChakra,
		CurStamina: u.CurStamina, MaxStamina: u.MaxStamina,

		Strength: u.Strength, Intelligence: u.Intelligence,
		Willpower: u.Willpower, Speed: u.Speed,

		NinjutsuOffence: u.NinjutsuOffence, NinjutsuDefence: u.NinjutsuDefence,
		GenjutsuOffence: u.GenjutsuOffence, GenjutsuDefence: u.GenjutsuDefence,
		TaijutsuOffence: u.TaijutsuOffence, TaijutsuDefence: u.TaijutsuDefence,
		BukijutsuOffence: u.BukijutsuOffence, BukijutsuDefence: u.BukijutsuDefence,

		IsAI:       u.IsAI,
		IsOriginal: isOriginal,

		Items:     append([]battle.Ability(nil), u.Items...),
		Jutsus:    append([]battle.Ability(nil), u.Jutsus...),
		Bloodline: u.Bloodline,
	}
	for i := range c.Items {
		c.Items[i].UpdatedAt = rewindCooldown(c.Items[i], now)
	}
	for i := range c.Jutsus {
		c.Jutsus[i].UpdatedAt = rewindCooldown(c.Jutsus[i], now)
	}
	c.DeriveHighest()
	return c
}

// rewindCooldown keeps an already-elapsed cooldown elapsed at battle start
// while preserving any remainder still running.
func rewindCooldown(a battle.Ability, now time.Time) time.Time {
	if a.CooldownSec <= 0 {
		return now
	}
	expiry := a.UpdatedAt.Add(time.Duration(a.CooldownSec) * time.Second)
	if expiry.Before(now) {
		return now.Add(-time.Duration(a.CooldownSec) * time.Second)
	}
	return a.UpdatedAt
}
