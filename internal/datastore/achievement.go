package datastore

import (
	"context"

	"flirtquest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableAchievement(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Achievement)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.UserAchievement)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserAchievement)(nil)).Index("index_user_achievement_unique").IfNotExists().Unique().Column("user_id", "achievement_slug").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetActiveAchievements(ctx context.Context, db *bun.DB) ([]*models.Achievement, error) {
	var achievements []*models.Achievement
	err := db.NewSelect().Model(&achievements).
		Where("active = true").
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return achievements, nil
}

func FindAchievementBySlug(ctx context.Context, db *bun.DB, slug string) (*models.Achievement, error) {
	var achievement models.Achievement
	err := db.NewSelect().Model(&achievement).Where("slug = ?", slug).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

func UpsertAchievement(ctx context.Context, db *bun.DB, achievement *models.Achievement) error {
	_, err := db.NewInsert().Model(achievement).
		On("CONFLICT (slug) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("description = EXCLUDED.description").
		Set("kind = EXCLUDED.kind").
		Set("requirement = EXCLUDED.requirement").
		Set("icon = EXCLUDED.icon").
		Set("xp_reward = EXCLUDED.xp_reward").
		Set("active = EXCLUDED.active").
		Exec(ctx)
	return err
}

func GetUserAchievements(ctx context.Context, db *bun.DB, userID string) ([]*models.UserAchievement, error) {
	var unlocks []*models.UserAchievement
	err := db.NewSelect().Model(&unlocks).
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return unlocks, nil
}

func FindUserAchievement(ctx context.Context, db *bun.DB, userID, slug string) (*models.UserAchievement, error) {
	var unlock models.UserAchievement
	err := db.NewSelect().Model(&unlock).
		Where("user_id = ?", userID).
		Where("achievement_slug = ?", slug).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &unlock, nil
}

// InsertUserAchievement relies on the unique (user_id, achievement_slug) index
// so a concurrent duplicate unlock inserts nothing. The bool reports whether
// this call created the row.
func InsertUserAchievement(ctx context.Context, idb bun.IDB, unlock *models.UserAchievement) (bool, error) {
	res, err := idb.NewInsert().Model(unlock).
		On("CONFLICT (user_id, achievement_slug) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func CountUserAchievements(ctx context.Context, db *bun.DB, userID string) (int, error) {
	count, err := db.NewSelect().Model((*models.UserAchievement)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}
