package battle

// EffectKind is the closed set of effect variants the engine understands.
// Realization and application switch exhaustively over this set; an unknown
// kind is an invariant violation, not a silently ignored value.
type EffectKind string

const (
	EffectDamage         EffectKind = "damage"
	EffectDamageOverTime EffectKind = "damage_over_time"
	EffectHeal           EffectKind = "heal"
	EffectStatBuff       EffectKind = "stat_buff"
	EffectStatDebuff     EffectKind = "stat_debuff"
	EffectBarrier        EffectKind = "barrier"
	EffectStun           EffectKind = "stun"
	EffectFleePrevent    EffectKind = "flee_prevent"
)

// Calculation selects how an effect's power is turned into a pool delta.
type Calculation string

const (
	// CalcStatic applies Power directly.
	CalcStatic Calculation = "static"
	// CalcFormula scales Power by the creator's highest offence against the
	// target's highest defence.
	CalcFormula Calculation = "formula"
)

// EffectTemplate is the declarative description attached to bloodlines,
// items and jutsus. Templates are data; the effects package realizes them
// into leveled instances.
type EffectTemplate struct {
	Kind        EffectKind  `json:"kind"`
	Power       float64     `json:"power"`
	PowerPerLvl float64     `json:"power_per_level"`
	Rounds      int         `json:"rounds"`
	Calculation Calculation `json:"calculation"`
	// Pool names the resource pool for damage/heal variants.
	Pool string `json:"pool,omitempty"`
	// Stats lists the stat schools a buff/debuff touches.
	Stats []StatType `json:"stats,omitempty"`
	// Generals lists the general attributes a buff/debuff touches.
	Generals []GeneralType `json:"generals,omitempty"`
	// Ground marks templates that land on a tile instead of a fighter.
	Ground bool `json:"ground,omitempty"`
}

// UserEffect is a realized effect bound to a fighter. IsNew and
// CastThisRound are transient resolution flags: IsNew marks instances not
// yet rendered to clients, CastThisRound keeps a shared effect from firing
// twice within one resolution pass.
type UserEffect struct {
	ID            string      `json:"id"`
	Kind          EffectKind  `json:"kind"`
	CreatorID     string      `json:"creator_id"`
	TargetID      string      `json:"target_id"`
	Power         float64     `json:"power"`
	OriginalPower float64     `json:"original_power"`
	Rounds        int         `json:"rounds"`
	CreatedRound  int         `json:"created_round"`
	Calculation   Calculation `json:"calculation"`
	Pool          string      `json:"pool,omitempty"`
	Stats         []StatType  `json:"stats,omitempty"`
	Generals      []GeneralType `json:"generals,omitempty"`
	IsNew         bool        `json:"is_new"`
	CastThisRound bool        `json:"cast_this_round"`
}

// Expired reports whether the instance has outlived its duration at the
// given round. Rounds <= 0 means "lasts until consumed".
func (e *UserEffect) Expired(round int) bool {
	return e.Rounds > 0 && round >= e.CreatedRound+e.Rounds
}

// GroundEffect is a realized effect bound to a grid coordinate (barriers,
// terrain hazards).
type GroundEffect struct {
	ID            string      `json:"id"`
	Kind          EffectKind  `json:"kind"`
	CreatorID     string      `json:"creator_id"`
	Longitude     int         `json:"longitude"`
	Latitude      int         `json:"latitude"`
	Power         float64     `json:"power"`
	OriginalPower float64     `json:"original_power"`
	Rounds        int         `json:"rounds"`
	CreatedRound  int         `json:"created_round"`
	Calculation   Calculation `json:"calculation"`
	Pool          string      `json:"pool,omitempty"`
	IsNew         bool        `json:"is_new"`
	CastThisRound bool        `json:"cast_this_round"`
}

// Expired mirrors UserEffect.Expired for ground instances.
func (e *GroundEffect) Expired(round int) bool {
	return e.Rounds > 0 && round >= e.CreatedRound+e.Rounds
}
