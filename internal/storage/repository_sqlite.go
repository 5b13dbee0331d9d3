package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Northern-Fayt/TheNinjaRPG/internal/battle"
	"github.com/Northern-Fayt/TheNinjaRPG/internal/users"
)

type sqliteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository wraps a migrated gorm handle in the Repository
// contract.
func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) GetUser(id string) (*users.User, error) {
	var u users.User
	if err := r.db.First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *sqliteRepository) GetRegeneratedUser(id string, now time.Time) (*users.User, error) {
	u, err := r.GetUser(id)
	if err != nil {
		return nil, err
	}
	// Regeneration only accrues while the user is out of battle; inside one
	// the snapshot owns the pools.
	if u.Status != users.StatusBattle {
		u.ApplyRegen(now)
	}
	return u, nil
}

func (r *sqliteRepository) UpdateUser(u *users.User) error {
	return r.db.Save(u).Error
}

func (r *sqliteRepository) FindNearestLevelAI(level int) (*users.User, error) {
	var u users.User
	res := r.db.
		Where("is_ai = ? AND status = ?", true, users.StatusAwake).
		Order(fmt.Sprintf("abs(level - %d) asc", level)).
		Limit(1).
		Find(&u)
	if res.Error != nil {
		return nil, res.Error
	}
	if u.ID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *sqliteRepository) GetBattleByID(id uint) (*battle.Battle, error) {
	var b battle.Battle
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *sqliteRepository) InitiateBattleTx(b *battle.Battle, participants []*users.User, hist *battle.History) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		for _, u := range participants {
			u.Status = users.StatusBattle
			u.BattleID = &b.ID
			if err := tx.Save(u).Error; err != nil {
				return err
			}
		}
		if hist != nil {
			hist.BattleID = b.ID
			if err := tx.Create(hist).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *sqliteRepository) UpdateBattleCAS(b *battle.Battle, readVersion int64) error {
	res := r.db.Model(&battle.Battle{}).
		Where("id = ? AND version = ?", b.ID, readVersion).
		Updates(map[string]interface{}{
			"version":          b.Version,
			"round":            b.Round,
			"active_user_id":   b.ActiveUserID,
			"round_started_at": b.RoundStartedAt,
			"users_state":      jsonColumn(b.UsersState),
			"users_effects":    jsonColumn(b.UsersEffects),
			"ground_effects":   jsonColumn(b.GroundEffects),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *sqliteRepository) CommitTerminalTx(b *battle.Battle, readVersion int64, updated []*users.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// The version guard still applies: deleting under a stale read
		// would discard a concurrent winner's commit.
		res := tx.Where("id = ? AND version = ?", b.ID, readVersion).Delete(&battle.Battle{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		for _, u := range updated {
			if err := tx.Save(u).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *sqliteRepository) ListStaleBattleIDs(before time.Time, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&battle.Battle{}).
		Where("updated_at < ?", before).
		Order("updated_at asc").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// jsonColumn marshals a snapshot slice the same way the model's json
// serializer does, so partial Updates stay byte-compatible with full Saves.
func jsonColumn(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func (r *sqliteRepository) CreateEntry(e *battle.Entry) error {
	return r.db.Create(e).Error
}

func (r *sqliteRepository) GetEntries(battleID uint, limit int) ([]battle.Entry, error) {
	var entries []battle.Entry
	if err := r.db.
		Where("battle_id = ?", battleID).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *sqliteRepository) CountRecentEncounters(userA, userB string, since time.Time) (int, error) {
	var count int64
	err := r.db.Model(&battle.History{}).
		Where("created_at > ?", since).
		Where(
			r.db.Where("attacker_id = ? AND defender_id = ?", userA, userB).
				Or("attacker_id = ? AND defender_id = ?", userB, userA),
		).
		Count(&count).Error
	return int(count), err
}
