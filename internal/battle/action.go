package battle

import "time"

// AbilityKind distinguishes the backing source of an ability.
type AbilityKind string

const (
	AbilityItem  AbilityKind = "item"
	AbilityJutsu AbilityKind = "jutsu"
)

// Ability is an equipped item or jutsu snapshot. UpdatedAt is purely a
// cooldown clock: at battle start it is rewound so remaining out-of-battle
// cooldown carries in, and every use advances it.
type Ability struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Kind        AbilityKind      `json:"ability_kind"`
	Level       int              `json:"level"`
	ActionCost  int              `json:"action_cost"`
	ChakraCost  float64          `json:"chakra_cost"`
	StaminaCost float64          `json:"stamina_cost"`
	HealthCost  float64          `json:"health_cost"`
	Range       int              `json:"range"`
	CooldownSec int              `json:"cooldown_sec"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Effects     []EffectTemplate `json:"effects"`
}

// OnCooldown reports whether the ability's cooldown has not yet elapsed.
func (a *Ability) OnCooldown(now time.Time) bool {
	if a.CooldownSec <= 0 {
		return false
	}
	return now.Before(a.UpdatedAt.Add(time.Duration(a.CooldownSec) * time.Second))
}

// ActionKind enumerates the discrete choices a fighter can make on its turn.
type ActionKind string

const (
	ActionMove        ActionKind = "move"
	ActionBasicAttack ActionKind = "attack"
	ActionDefend      ActionKind = "defend"
	ActionFlee        ActionKind = "flee"
	ActionWait        ActionKind = "wait"
	ActionItem        ActionKind = "item"
	ActionJutsu       ActionKind = "jutsu"
)

// Action is a value describing one performable choice. It is never
// persisted; the resolver derives the available set from the fighter's
// equipment plus the built-in basics.
type Action struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Kind        ActionKind       `json:"kind"`
	ActionCost  int              `json:"action_cost"`
	ChakraCost  float64          `json:"chakra_cost"`
	StaminaCost float64          `json:"stamina_cost"`
	HealthCost  float64          `json:"health_cost"`
	Range       int              `json:"range"`
	Effects     []EffectTemplate `json:"effects"`
	// Ability points back at the equipped item/jutsu so a successful use can
	// advance its cooldown clock.
	Ability *Ability `json:"-"`
}
