package datastore

import (
	"context"
	"time"

	"flirtquest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableMission(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Mission)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Mission)(nil)).Index("index_mission_type").IfNotExists().Column("type").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.UserMission)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserMission)(nil)).Index("index_user_mission_unique").IfNotExists().Unique().Column("user_id", "mission_slug", "period_start").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetMissionsByType(ctx context.Context, db *bun.DB, missionType string) ([]*models.Mission, error) {
	var missions []*models.Mission
	err := db.NewSelect().Model(&missions).
		Where("type = ?", missionType).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return missions, nil
}

// GetMissionsForUser returns the shared catalog plus the custom missions the
// user created themselves.
func GetMissionsForUser(ctx context.Context, db *bun.DB, userID string) ([]*models.Mission, error) {
	var missions []*models.Mission
	err := db.NewSelect().Model(&missions).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("created_by IS NULL").WhereOr("created_by = ?", userID)
		}).
		Order("type ASC").
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return missions, nil
}

func FindMissionBySlug(ctx context.Context, db *bun.DB, slug string) (*models.Mission, error) {
	var mission models.Mission
	err := db.NewSelect().Model(&mission).Where("slug = ?", slug).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &mission, nil
}

func UpsertMission(ctx context.Context, db *bun.DB, mission *models.Mission) error {
	_, err := db.NewInsert().Model(mission).
		On("CONFLICT (slug) DO UPDATE").
		Set("type = EXCLUDED.type").
		Set("title = EXCLUDED.title").
		Set("description = EXCLUDED.description").
		Set("difficulty = EXCLUDED.difficulty").
		Set("requirement = EXCLUDED.requirement").
		Set("xp_reward = EXCLUDED.xp_reward").
		Exec(ctx)
	return err
}

func CreateMission(ctx context.Context, db *bun.DB, mission *models.Mission) (*models.Mission, error) {
	_, err := db.NewInsert().Model(mission).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return mission, nil
}

func FindUserMission(ctx context.Context, idb bun.IDB, userID, missionSlug string, periodStart time.Time) (*models.UserMission, error) {
	var um models.UserMission
	err := idb.NewSelect().Model(&um).
		Where("user_id = ?", userID).
		Where("mission_slug = ?", missionSlug).
		Where("period_start = ?", periodStart).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &um, nil
}

func GetUserMissionsForPeriods(ctx context.Context, db *bun.DB, userID string, periodStarts []time.Time) ([]*models.UserMission, error) {
	var ums []*models.UserMission
	if len(periodStarts) == 0 {
		return ums, nil
	}
	err := db.NewSelect().Model(&ums).
		Where("user_id = ?", userID).
		Where("period_start IN (?)", bun.In(periodStarts)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return ums, nil
}

// InsertUserMission starts a mission instance for one period. The unique
// (user_id, mission_slug, period_start) index rejects a second concurrent
// start; the bool reports whether this call created the row.
func InsertUserMission(ctx context.Context, idb bun.IDB, um *models.UserMission) (bool, error) {
	res, err := idb.NewInsert().Model(um).
		On("CONFLICT (user_id, mission_slug, period_start) DO NOTHING").
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

func UpdateUserMissionProgress(ctx context.Context, idb bun.IDB, id int64, progress int) error {
	_, err := idb.NewUpdate().
		Model((*models.UserMission)(nil)).
		Set("progress = ?", progress).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// CompleteUserMission only flips an open instance; a row already completed is
// not touched, which is what makes repeated completion calls safe.
func CompleteUserMission(ctx context.Context, idb bun.IDB, id int64, completedAt time.Time) (bool, error) {
	res, err := idb.NewUpdate().
		Model((*models.UserMission)(nil)).
		Set("completed_at = ?", completedAt).
		Set("progress = 100").
		Where("id = ?", id).
		Where("completed_at IS NULL").
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

func CountCompletedMissions(ctx context.Context, db *bun.DB, userID string) (int, error) {
	count, err := db.NewSelect().Model((*models.UserMission)(nil)).
		Where("user_id = ?", userID).
		Where("completed_at IS NOT NULL").
		Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func GetCompletedMissions(ctx context.Context, db *bun.DB, userID string, limit, offset int) ([]*models.UserMission, error) {
	var ums []*models.UserMission
	err := db.NewSelect().Model(&ums).
		Where("user_id = ?", userID).
		Where("completed_at IS NOT NULL").
		Order("completed_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return ums, nil
}

func GetLastCompletedMission(ctx context.Context, db *bun.DB, userID string) (*models.UserMission, error) {
	var um models.UserMission
	err := db.NewSelect().Model(&um).
		Where("user_id = ?", userID).
		Where("completed_at IS NOT NULL").
		Order("completed_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &um, nil
}

func CountCustomMissionsInPeriod(ctx context.Context, db *bun.DB, userID string, since time.Time) (int, error) {
	count, err := db.NewSelect().Model((*models.Mission)(nil)).
		Where("created_by = ?", userID).
		Where("created_at >= ?", since).
		Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}
