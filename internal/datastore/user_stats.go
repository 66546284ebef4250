package datastore

import (
	"context"
	"time"

	"flirtquest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUserStats(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserStats)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserStats)(nil)).Index("index_user_stats_total_xp").IfNotExists().Column("total_xp").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindUserStats(ctx context.Context, idb bun.IDB, userID string) (*models.UserStats, error) {
	var stats models.UserStats
	err := idb.NewSelect().Model(&stats).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func EnsureUserStats(ctx context.Context, db *bun.DB, userID string) (*models.UserStats, error) {
	stats := &models.UserStats{UserID: userID, UpdatedAt: time.Now()}
	_, err := db.NewInsert().Model(stats).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return FindUserStats(ctx, db, userID)
}

func AddUserXP(ctx context.Context, idb bun.IDB, userID string, xp int) error {
	_, err := idb.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("total_xp = total_xp + ?", xp).
		Set("updated_at = current_timestamp").
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func RecordUserActivity(ctx context.Context, idb bun.IDB, userID string, streak, longest int, activeDate time.Time) error {
	_, err := idb.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("total_interactions = total_interactions + 1").
		Set("current_streak = ?", streak).
		Set("longest_streak = ?", longest).
		Set("last_active_date = ?", activeDate).
		Set("updated_at = current_timestamp").
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func ResetExpiredStreaks(ctx context.Context, db *bun.DB, cutoff time.Time) (int, error) {
	res, err := db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("current_streak = 0").
		Set("updated_at = current_timestamp").
		Where("current_streak > 0").
		Where("last_active_date IS NOT NULL").
		Where("last_active_date < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func GetTopUserStats(ctx context.Context, db *bun.DB, limit, offset int) ([]*models.UserStats, error) {
	var stats []*models.UserStats
	err := db.NewSelect().Model(&stats).
		Order("total_xp DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
