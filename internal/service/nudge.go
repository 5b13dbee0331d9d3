package service

import (
	"time"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/constants"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/logging"
)

// NudgeStaleBattles drives forward battles that nobody has touched for a
// while and whose active actor is an AI. Without it an AI whose chained
// action budget ran out would sit idle until the next human request.
func (s *BattleService) NudgeStaleBattles(staleAfter time.Duration, limit int) {
	now := s.now()
	ids, err := s.repo.ListStaleBattleIDs(now.Add(-staleAfter), limit)
	if err != nil {
		logging.Error("stale battle scan failed", err, nil)
		return
	}
	for _, id := range ids {
		b, err := s.repo.GetBattleByID(id)
		if err != nil {
			continue
		}
		actor := b.Combatant(b.ActiveUserID)
		if actor == nil || !actor.IsAI {
			continue
		}
		if _, err := s.PerformAction(actor.ControllerID, id, nil); err != nil {
			logging.Warn("failed to nudge stale battle", logging.Fields{
				constants.LogFieldBattleID: id,
				"err":                      err.Error(),
			})
		}
	}
}
