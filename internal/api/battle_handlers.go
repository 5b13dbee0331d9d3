package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/constants"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/engine"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/service"
)

// ActionRequest is the perform-action request body. Coordinates are
// optional: a stunned fighter's forced skip needs none.
type ActionRequest struct {
	ActionID  string `json:"action_id"`
	Longitude int    `json:"longitude"`
	Latitude  int    `json:"latitude"`
}

// AttackRequest initiates a PvP battle against a user seen at a world
// position.
type AttackRequest struct {
	TargetID  string `json:"target_id"`
	Longitude int    `json:"longitude"`
	Latitude  int    `json:"latitude"`
	Sector    int    `json:"sector"`
}

func battleIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("battleID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleID})
		return 0, false
	}
	return uint(id), true
}

// GetBattle returns the caller's current battle, aligned and masked, or a
// null battle when the caller is not fighting.
func (h *BattleHandler) GetBattle(c *gin.Context) {
	userID := sessionUserID(c)
	out, err := h.svc.GetBattle(userID, nil)
	if err != nil {
		h.renderServiceError(c, err, constants.ErrFailedFetchBattle)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetBattleByID returns a specific battle for the caller.
func (h *BattleHandler) GetBattleByID(c *gin.Context) {
	userID := sessionUserID(c)
	id, ok := battleIDParam(c)
	if !ok {
		return
	}
	out, err := h.svc.GetBattle(userID, &id)
	if err != nil {
		h.renderServiceError(c, err, constants.ErrFailedFetchBattle)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetBattleEntries returns the recent action history for a battle, newest
// first.
func (h *BattleHandler) GetBattleEntries(c *gin.Context) {
	id, ok := battleIDParam(c)
	if !ok {
		return
	}
	entries, err := h.svc.GetBattleEntries(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchEntries})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// PerformAction submits one action for the caller's fighter.
func (h *BattleHandler) PerformAction(c *gin.Context) {
	userID := sessionUserID(c)
	id, ok := battleIDParam(c)
	if !ok {
		return
	}
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	var input *engine.UserInput
	if req.ActionID != "" {
		input = &engine.UserInput{ActionID: req.ActionID, Longitude: req.Longitude, Latitude: req.Latitude}
	}
	out, err := h.svc.PerformAction(userID, id, input)
	if err != nil {
		h.renderServiceError(c, err, constants.ErrFailedPerform)
		return
	}
	c.JSON(http.StatusOK, out)
}

// StartArenaBattle pits the caller against the nearest-level AI.
func (h *BattleHandler) StartArenaBattle(c *gin.Context) {
	userID := sessionUserID(c)
	res, err := h.svc.StartArenaBattle(userID)
	if err != nil {
		h.renderServiceError(c, err, constants.ErrFailedPerform)
		return
	}
	c.JSON(http.StatusOK, res)
}

// AttackUser initiates a PvP combat battle.
func (h *BattleHandler) AttackUser(c *gin.Context) {
	userID := sessionUserID(c)
	var req AttackRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	res, err := h.svc.AttackUser(userID, req.TargetID, req.Longitude, req.Latitude, req.Sector)
	if err != nil {
		h.renderServiceError(c, err, constants.ErrFailedPerform)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SubscribeBattle upgrades to a websocket streaming version-bump events
// for one battle.
func (h *BattleHandler) SubscribeBattle(c *gin.Context) {
	id, ok := battleIDParam(c)
	if !ok {
		return
	}
	h.hub.ServeChannel(c.Writer, c.Request, service.BattleChannel(id))
}

func (h *BattleHandler) renderServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrBattleNotFound):
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
	case errors.Is(err, service.ErrNotInBattle):
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrNotInBattle})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
	case errors.Is(err, service.ErrBattleConflict):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrBattleBusy})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: fallback})
	}
}
