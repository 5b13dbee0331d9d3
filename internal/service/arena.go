package service

import (
	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/users"
)

// StartArenaBattle matches the user against the AI opponent nearest their
// level and initiates an arena fight. Arena fights never write encounter
// ledger rows, so repeat grinding carries no reward penalty beyond the
// arena's own tuning.
func (s *BattleService) StartArenaBattle(userID string) (*InitiateResult, error) {
	u, err := s.repo.GetRegeneratedUser(userID, s.now())
	if err != nil {
		return nil, ErrUserNotFound
	}
	if u.Status != users.StatusAwake {
		if u.Status == users.StatusBattle {
			return failure("You are already in a battle"), nil
		}
		return failure("You must be awake to enter the arena"), nil
	}
	opponent, err := s.repo.FindNearestLevelAI(u.Level)
	if err != nil {
		return failure("No arena opponent is available right now"), nil
	}
	return s.InitiateBattle(userID, opponent.ID, battle.TypeArena)
}

// AttackUser initiates a PvP combat battle against another user, enforcing
// positional adjacency within the same sector and the target's immunity
// window. The caller supplies the coordinates it sees the target at; a
// stale position is reported back rather than silently corrected.
func (s *BattleService) AttackUser(attackerID, targetID string, longitude, latitude, sector int) (*InitiateResult, error) {
	if attackerID == targetID {
		return failure("You cannot attack yourself"), nil
	}
	now := s.now()
	attacker, err := s.repo.GetRegeneratedUser(attackerID, now)
	if err != nil {
		return nil, ErrUserNotFound
	}
	target, err := s.repo.GetRegeneratedUser(targetID, now)
	if err != nil {
		return failure("Could not find your target"), nil
	}

	if attacker.Sector != sector || target.Sector != sector {
		return failure("Your target is not in this sector"), nil
	}
	if target.Longitude != longitude || target.Latitude != latitude {
		return failure("Your target has moved"), nil
	}
	if !adjacent(attacker.Longitude, attacker.Latitude, longitude, latitude) {
		return failure("Your target is out of reach"), nil
	}
	return s.InitiateBattle(attackerID, targetID, battle.TypeCombat)
}

// adjacent reports whether two world positions touch (including standing on
// the same tile).
func adjacent(aLon, aLat, bLon, bLat int) bool {
	dLon := aLon - bLon
	dLat := aLat - bLat
	if dLon < 0 {
		dLon = -dLon
	}
	if dLat < 0 {
		dLat = -dLat
	}
	return dLon <= 1 && dLat <= 1
}
