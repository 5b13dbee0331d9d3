package battle

import "gorm.io/gorm"

// History is one row in the append-only encounter ledger: who attacked whom
// and when. It survives battle deletion and only feeds the repeat-encounter
// reward scaling.
type History struct {
	gorm.Model
	BattleID   uint   `json:"battle_id" gorm:"index"`
	AttackerID string `json:"attacker_id" gorm:"size:36;index:idx_battle_histories_pair"`
	DefenderID string `json:"defender_id" gorm:"size:36;index:idx_battle_histories_pair"`
}

// Entry is one row of the per-battle action log shown to players. Rows are
// written on every committed resolution and read most-recent-first.
type Entry struct {
	gorm.Model
	BattleID      uint   `json:"battle_id" gorm:"index"`
	BattleVersion int64  `json:"battle_version"`
	Round         int    `json:"round"`
	Description   string `json:"description" gorm:"size:2048"`
	// AppliedEffects carries the structured effect list for the resolution,
	// serialized for the client-side renderer.
	AppliedEffects []UserEffect `json:"applied_effects" gorm:"serializer:json"`
}

// Result is the terminal outcome of a battle as seen by one viewer. A nil
// Result means the battle is still ongoing for that viewer.
type Result struct {
	FriendsLeft int     `json:"friends_left"`
	TargetsLeft int     `json:"targets_left"`
	Experience  float64 `json:"experience"`
	Money       float64 `json:"money"`
	// Outcome is "win", "loss" or "fled" from the viewer's perspective.
	Outcome string `json:"outcome"`
}
