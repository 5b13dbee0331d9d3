package main

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/ai"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/api"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/config"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/constants"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/logging"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/pusher"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/service"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Invalid server configuration", err, nil)
	}

	db, err := storage.OpenAndMigrate(cfg.DBPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"db_path": cfg.DBPath})
	}

	repo := storage.NewSQLiteRepository(db)
	hub := pusher.NewHub()
	svc := service.NewBattleService(repo, hub, ai.RuleBased{})
	handler := api.NewBattleHandler(svc, hub)

	// Background scanner: AI turns normally resolve inline with the human
	// request that triggered them, bounded by the chained-action cap. This
	// loop picks up battles the cap left mid-turn so an idle AI still acts.
	startAIScanner(svc, time.Duration(cfg.AITickSeconds)*time.Second)

	if cfg.GinReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteVersion, api.Version)

		protected := apiRoutes.Group("")
		protected.Use(api.AuthRequired())

		protected.GET(constants.RouteBattle, handler.GetBattle)
		protected.GET(constants.RouteBattleByID, handler.GetBattleByID)
		protected.GET(constants.RouteBattleEntries, handler.GetBattleEntries)
		protected.POST(constants.RouteBattleAction, handler.PerformAction)
		protected.GET(constants.RouteBattleWS, handler.SubscribeBattle)
		protected.POST(constants.RouteArena, handler.StartArenaBattle)
		protected.POST(constants.RouteAttack, handler.AttackUser)
	}

	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: cfg.ServerAddress})
	if err := router.Run(cfg.ServerAddress); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}

func startAIScanner(svc *service.BattleService, tick time.Duration) {
	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for range ticker.C {
			svc.NudgeStaleBattles(tick, 20)
		}
	}()
}
