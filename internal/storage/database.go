package storage

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/logging"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/users"
)

// OpenAndMigrate opens the sqlite database, keeps the schema updated via
// AutoMigrate and seeds the default arena AI opponents when the users table
// is empty.
func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&users.User{},
		&battle.Battle{},
		&battle.History{},
		&battle.Entry{},
	); err != nil {
		return nil, err
	}
	seedArenaAIs(db)
	return db, nil
}

// seedArenaAIs inserts a ladder of AI opponents across levels so arena
// matchmaking always finds a nearest-level candidate.
func seedArenaAIs(db *gorm.DB) {
	var count int64
	db.Model(&users.User{}).Where("is_ai = ?", true).Count(&count)
	if count > 0 {
		return
	}
	names := []string{"Training Dummy", "Genin Challenger", "Chunin Challenger", "Jonin Challenger", "Anbu Challenger"}
	ais := make([]users.User, 0, len(names))
	for i, name := range names {
		level := 1 + i*10
		base := float64(50 + level*10)
		ais = append(ais, users.User{
			ID:         uuid.NewString(),
			Username:   name,
			Status:     users.StatusAwake,
			IsAI:       true,
			Level:      level,
			CurHealth:  base, MaxHealth: base,
			CurChakra:  base, MaxChakra: base,
			CurStamina: base, MaxStamina: base,
			Strength:   float64(level), Intelligence: float64(level),
			Willpower:  float64(level), Speed: float64(level),
			NinjutsuOffence: base / 2, NinjutsuDefence: base / 2,
			GenjutsuOffence: base / 3, GenjutsuDefence: base / 3,
			TaijutsuOffence: base / 2, TaijutsuDefence: base / 2,
			BukijutsuOffence: base / 3, BukijutsuDefence: base / 3,
			RegenRate: 10,
			RegenAt:   time.Now(),
		})
	}
	if err := db.Create(&ais).Error; err != nil {
		logging.Error("failed to seed arena AI opponents", err, nil)
	}
}
