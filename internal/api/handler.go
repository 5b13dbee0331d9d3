package api

import (
	"github.com/Northern-Fayt/TheNinjaRPG/internal/pusher"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/service"
)

// BattleHandler groups all battle-related HTTP handlers.
type BattleHandler struct {
	svc *service.BattleService
	hub *pusher.Hub
}

// NewBattleHandler creates a BattleHandler over the battle service and the
// realtime hub.
func NewBattleHandler(svc *service.BattleService, hub *pusher.Hub) *BattleHandler {
	return &BattleHandler{svc: svc, hub: hub}
}
