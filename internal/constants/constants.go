package constants

import "time"

// Combat tuning. The map is a fixed hex field; every fighter gets a fresh
// action-point budget at round start and spends it across moves, attacks and
// abilities until the turn passes.
const (
	GridWidth  = 13
	GridHeight = 5

	// Seeded starting positions for a one-on-one fight.
	DefenderStartLongitude = 4
	DefenderStartLatitude  = 2
	AttackerStartLongitude = 8
	AttackerStartLatitude  = 2

	ActionPointsPerRound = 100
	MoveActionCost       = 30
	AttackActionCost     = 60
	DefendActionCost     = 40
	FleeActionCost       = 100
	DefaultAbilityCost   = 60

	BasicAttackRange = 1
	MoveRange        = 1

	// MaxAIChainedActions bounds how many AI turns a single request may
	// drive before control returns to the caller.
	MaxAIChainedActions = 5

	// Optimistic concurrency bounds: outer read-modify-write fetches and
	// inner compare-and-swap commit retries.
	MaxFetchAttempts   = 3
	MaxCommitRetries   = 2
	BattleEntriesLimit = 30

	// RewardScalingWindow is the trailing window in which repeated
	// encounters between the same two humans dampen rewards.
	RewardScalingWindow = 60 * time.Minute

	// Ground hazards placed at initiation.
	GroundHazardCount = 3

	// PvP attack immunity window after a lost fight.
	ImmunityWindow = 5 * time.Minute
)

// Routes used by the backend router.
const (
	RouteAPIPrefix     = "/api"
	RouteBattle        = "/battle"
	RouteBattleByID    = "/battle/:battleID"
	RouteBattleEntries = "/battle/:battleID/entries"
	RouteBattleAction  = "/battle/:battleID/action"
	RouteBattleWS      = "/battle/:battleID/ws"
	RouteArena         = "/arena"
	RouteAttack        = "/attack"
	RouteVersion       = "/version"
)

// HTTP header and auth plumbing.
const (
	HeaderAuthorization = "Authorization"
	BearerPrefix        = "Bearer "
)

// Common JSON response keys.
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
)

// Common error messages used across API handlers.
const (
	ErrInvalidRequest     = "Invalid request"
	ErrInvalidBattleID    = "Invalid battle ID"
	ErrBattleNotFound     = "Battle not found"
	ErrAuthRequired       = "Authentication required"
	ErrNotInBattle        = "You are not in this battle"
	ErrFailedFetchBattle  = "Failed to fetch battle"
	ErrFailedFetchEntries = "Failed to fetch battle entries"
	ErrFailedPerform      = "Failed to perform action"
	ErrBattleBusy         = "Battle is busy, please try again"
)

// Logging field names.
const (
	LogFieldBattleID = "battle_id"
	LogFieldUserID   = "user_id"
	LogFieldVersion  = "version"
	LogFieldRound    = "round"
	LogFieldAddr     = "addr"
	LogFieldChannel  = "channel"
)
