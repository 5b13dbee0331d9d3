package battle

import "time"

// GeneralType names the four general attributes shared by every fighter.
type GeneralType string

const (
	GeneralStrength     GeneralType = "strength"
	GeneralIntelligence GeneralType = "intelligence"
	GeneralWillpower    GeneralType = "willpower"
	GeneralSpeed        GeneralType = "speed"
)

// StatType names the four combat schools, each with an offensive and a
// defensive pool.
type StatType string

const (
	StatNinjutsuOffence  StatType = "ninjutsuOffence"
	StatNinjutsuDefence  StatType = "ninjutsuDefence"
	StatGenjutsuOffence  StatType = "genjutsuOffence"
	StatGenjutsuDefence  StatType = "genjutsuDefence"
	StatTaijutsuOffence  StatType = "taijutsuOffence"
	StatTaijutsuDefence  StatType = "taijutsuDefence"
	StatBukijutsuOffence StatType = "bukijutsuOffence"
	StatBukijutsuDefence StatType = "bukijutsuDefence"
)

// UsedAction is one entry in a fighter's append-only action log.
type UsedAction struct {
	ActionID string `json:"action_id"`
	Round    int    `json:"round"`
}

// Combatant is the battle-scoped snapshot of one participant. It is copied
// into the aggregate at initiation and folded back into the durable user
// record when the battle ends; it never outlives the battle row.
type Combatant struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	// ControllerID is who drives this fighter's turns: the fighter itself,
	// or the human an AI summon belongs to.
	ControllerID string `json:"controller_id"`
	VillageID    string `json:"village_id"`
	Level        int    `json:"level"`

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

	// Derived once at battle start and held fixed for the whole encounter.
	HighestOffence float64 `json:"highest_offence"`
	HighestDefence float64 `json:"highest_defence"`

	Experience float64 `json:"experience"`
	Money      float64 `json:"money"`

	Longitude int `json:"longitude"`
	Latitude  int `json:"latitude"`

	IsAI       bool `json:"is_ai"`
	IsOriginal bool `json:"is_original"`
	FledBattle bool `json:"fled_battle"`
	LeftBattle bool `json:"left_battle"`

	// ActionPoints is the per-turn budget, restored at every round start.
	ActionPoints int `json:"action_points"`
	// ActedRound marks turn consumption: a round is complete once every
	// alive fighter's ActedRound has reached the battle's current round.
	// Tracked as a round number rather than a timestamp so a rollover and
	// the actions that triggered it can share one request clock.
	ActedRound int `json:"acted_round"`
	// ActedAt records when the fighter last acted.
	ActedAt time.Time `json:"acted_at"`

	UsedGenerals []GeneralType `json:"used_generals"`
	UsedStats    []StatType    `json:"used_stats"`
	UsedActions  []UsedAction  `json:"used_actions"`

	Items  []Ability `json:"items"`
	Jutsus []Ability `json:"jutsus"`

	Bloodline *Bloodline `json:"bloodline,omitempty"`
}

// Bloodline carries the passive effect templates granted by a fighter's
// lineage; they are realized onto the fighter at battle start.
type Bloodline struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Effects []EffectTemplate `json:"effects"`
}

// Offence returns the offensive pool for the given school.
func (c *Combatant) Offence(s StatType) float64 {
	switch s {
	case StatNinjutsuOffence:
		return c.NinjutsuOffence
	case StatGenjutsuOffence:
		return c.GenjutsuOffence
	case StatTaijutsuOffence:
		return c.TaijutsuOffence
	case StatBukijutsuOffence:
		return c.BukijutsuOffence
	}
	return 0
}

// Defence returns the defensive pool for the given school.
func (c *Combatant) Defence(s StatType) float64 {
	switch s {
	case StatNinjutsuDefence:
		return c.NinjutsuDefence
	case StatGenjutsuDefence:
		return c.GenjutsuDefence
	case StatTaijutsuDefence:
		return c.TaijutsuDefence
	case StatBukijutsuDefence:
		return c.BukijutsuDefence
	}
	return 0
}

// DeriveHighest fixes HighestOffence/HighestDefence from the current stat
// blocks. Called once at initiation.
func (c *Combatant) DeriveHighest() {
	c.HighestOffence = maxFloat(c.NinjutsuOffence, c.GenjutsuOffence, c.TaijutsuOffence, c.BukijutsuOffence)
	c.HighestDefence = maxFloat(c.NinjutsuDefence, c.GenjutsuDefence, c.TaijutsuDefence, c.BukijutsuDefence)
}

// ApplyPoolDelta adjusts a resource pool while keeping 0 <= cur <= max.
func (c *Combatant) ApplyPoolDelta(pool string, delta float64) {
	clamp := func(cur, max float64) float64 {
		cur += delta
		if cur < 0 {
			cur = 0
		}
		if cur > max {
			cur = max
		}
		return cur
	}
	switch pool {
	case PoolHealth:
		c.CurHealth = clamp(c.CurHealth, c.MaxHealth)
	case PoolChakra:
		c.CurChakra = clamp(c.CurChakra, c.MaxChakra)
	case PoolStamina:
		c.CurStamina = clamp(c.CurStamina, c.MaxStamina)
	}
}

// Resource pool names used by effects and ability costs.
const (
	PoolHealth  = "health"
	PoolChakra  = "chakra"
	PoolStamina = "stamina"
)

// RecordAction appends to the fighter's append-only logs and stamps turn
// consumption.
func (c *Combatant) RecordAction(actionID string, round int, now time.Time) {
	c.UsedActions = append(c.UsedActions, UsedAction{ActionID: actionID, Round: round})
	c.ActedRound = round
	c.ActedAt = now
}

func maxFloat(vals ...float64) float64 {
	m := 0.0
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}
