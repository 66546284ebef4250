package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"flirtquest/internal/datastore"
	"flirtquest/internal/datastore/redis_store"
	"flirtquest/internal/gamification"
	"flirtquest/internal/models"
	"flirtquest/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceGamification struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig *ServiceConfig
	serviceAI     *ServiceAI
}

func NewServiceGamification(container *do.Injector) (*ServiceGamification, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	serviceAI, err := do.Invoke[*ServiceAI](container)
	if err != nil {
		return nil, err
	}

	return &ServiceGamification{container, redisDB, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceConfig, serviceAI}, nil
}

// statsCounters snapshots the per-user numbers that achievement requirements
// read. Score thresholds are prefetched per distinct min_score so evaluation
// stays pure.
type statsCounters struct {
	interactions int
	streak       int
	byMinScore   map[int]int
}

func (c *statsCounters) InteractionCount() int { return c.interactions }
func (c *statsCounters) CurrentStreak() int    { return c.streak }

func (c *statsCounters) ScoresAtLeast(min int) int {
	return c.byMinScore[min]
}

func (service *ServiceGamification) loadCounters(ctx context.Context, userID string, defs []*models.Achievement) (*statsCounters, error) {
	stats, err := datastore.FindUserStats(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		stats = &models.UserStats{UserID: userID}
	}

	total, err := datastore.CountInteractionsByUser(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		return nil, err
	}

	byMinScore := map[int]int{}
	for _, def := range defs {
		min := def.Requirement.MinScore
		if min <= 0 {
			continue
		}
		if _, ok := byMinScore[min]; ok {
			continue
		}
		count, err := datastore.CountInteractionsWithMinScore(ctx, service.readonlyPostgresDB, userID, min)
		if err != nil {
			return nil, err
		}
		byMinScore[min] = count
	}

	return &statsCounters{
		interactions: total,
		streak:       stats.CurrentStreak,
		byMinScore:   byMinScore,
	}, nil
}

func (service *ServiceGamification) GetStats(ctx context.Context, userID string) (*models.UserStats, error) {
	callback := func() (*models.UserStats, error) {
		return datastore.EnsureUserStats(ctx, service.postgresDB, userID)
	}

	stats, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserStats(userID), CACHE_TTL_5_SECONDS, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return stats, nil
}

func (service *ServiceGamification) GetLevel(ctx context.Context, userID string) (*gamification.Level, error) {
	stats, err := service.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	level := gamification.LevelProgress(stats.TotalXP)
	return &level, nil
}

func (service *ServiceGamification) GetStreak(ctx context.Context, userID string) (*models.StreakInfo, error) {
	stats, err := service.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.StreakInfo{
		CurrentStreak:    stats.CurrentStreak,
		LongestStreak:    stats.LongestStreak,
		LastActivityDate: stats.LastActiveDate,
		StreakType:       "daily",
	}, nil
}

// ProfileView is the single-screen gamification summary.
type ProfileView struct {
	Stats                *models.UserStats  `json:"stats"`
	Level                gamification.Level `json:"level"`
	Streak               *models.StreakInfo `json:"streak"`
	AchievementsUnlocked int                `json:"achievements_unlocked"`
	MissionsCompleted    int                `json:"missions_completed"`
}

func (service *ServiceGamification) Profile(ctx context.Context, userID string) (*ProfileView, error) {
	stats, err := service.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlocked, err := datastore.CountUserAchievements(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	completed, err := datastore.CountCompletedMissions(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &ProfileView{
		Stats: stats,
		Level: gamification.LevelProgress(stats.TotalXP),
		Streak: &models.StreakInfo{
			CurrentStreak:    stats.CurrentStreak,
			LongestStreak:    stats.LongestStreak,
			LastActivityDate: stats.LastActiveDate,
			StreakType:       "daily",
		},
		AchievementsUnlocked: unlocked,
		MissionsCompleted:    completed,
	}, nil
}

// SkillsView maps the user's averages onto the coached skill axes, with one
// tip for the current level band.
type SkillsView struct {
	Breakdown map[string]int `json:"breakdown"`
	Advice    string         `json:"advice"`
}

func (service *ServiceGamification) Skills(ctx context.Context, userID string) (*SkillsView, error) {
	stats, err := service.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	interactionStats, err := datastore.GetInteractionStats(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	avg := interactionStats.AverageScore
	level := gamification.LevelFromXP(stats.TotalXP)

	return &SkillsView{
		Breakdown: map[string]int{
			"confidence": clampScore(avg + 5),
			"humor":      clampScore(avg - 5),
			"charisma":   clampScore(avg),
			"clarity":    clampScore(avg + 10),
		},
		Advice: service.serviceAI.Advice(level),
	}, nil
}

// ListAchievements returns the catalog annotated with the caller's unlock
// state and progress toward the locked ones.
func (service *ServiceGamification) ListAchievements(ctx context.Context, userID string) ([]*models.AchievementWithStatus, error) {
	defs, err := datastore.GetActiveAchievements(ctx, service.readonlyPostgresDB)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	unlocks, err := datastore.GetUserAchievements(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	unlockedAt := make(map[string]time.Time, len(unlocks))
	for _, unlock := range unlocks {
		unlockedAt[unlock.AchievementSlug] = unlock.UnlockedAt
	}

	counters, err := service.loadCounters(ctx, userID, defs)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	results := make([]*models.AchievementWithStatus, 0, len(defs))
	for _, def := range defs {
		item := &models.AchievementWithStatus{Achievement: *def}
		if at, ok := unlockedAt[def.Slug]; ok {
			item.Unlocked = true
			at := at
			item.UnlockedAt = &at
			item.Progress = 100
		} else {
			item.Progress = gamification.AchievementProgress(*def, counters)
		}
		results = append(results, item)
	}

	return results, nil
}

// CheckAchievements evaluates the whole catalog and unlocks whatever the user
// now qualifies for. One malformed definition is reported and skipped, it
// never aborts the sweep.
func (service *ServiceGamification) CheckAchievements(ctx context.Context, userID string) ([]*models.UserAchievement, error) {
	mutex := service.rs.NewMutex(LockKeyUserAchievement(userID), redsync.WithExpiry(10*time.Second), redsync.WithTries(1))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrAchievementLock, errorx.Invalid)
	}
	//nolint:errcheck
	defer mutex.Unlock()

	defs, err := datastore.GetActiveAchievements(ctx, service.readonlyPostgresDB)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	counters, err := service.loadCounters(ctx, userID, defs)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	catalog := make([]models.Achievement, 0, len(defs))
	for _, def := range defs {
		catalog = append(catalog, *def)
	}

	var unlocked []*models.UserAchievement
	for _, result := range gamification.EvaluateAchievements(catalog, counters) {
		if result.Err != nil || !result.Qualified {
			continue
		}

		unlock, _, err := service.unlock(ctx, userID, result.Achievement)
		if err != nil {
			continue
		}
		if unlock != nil {
			unlocked = append(unlocked, unlock)
		}
	}

	if len(unlocked) > 0 {
		_ = service.cache.Delete(ctx, DBKeyUserAchievements(userID))
	}

	return unlocked, nil
}

// ClaimAchievement is the explicit unlock path. Calling it twice returns the
// same unlock row, never a second XP award.
func (service *ServiceGamification) ClaimAchievement(ctx context.Context, userID, slug string) (*models.UserAchievement, error) {
	def, err := datastore.FindAchievementBySlug(ctx, service.readonlyPostgresDB, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(errors.New("achievement not found"), errorx.NotExist)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	existing, err := datastore.FindUserAchievement(ctx, service.readonlyPostgresDB, userID, slug)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	counters, err := service.loadCounters(ctx, userID, []*models.Achievement{def})
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	results := gamification.EvaluateAchievements([]models.Achievement{*def}, counters)
	if len(results) == 0 || results[0].Err != nil {
		return nil, errorx.Wrap(gamification.ErrMalformedRequirement, errorx.Service)
	}
	if !results[0].Qualified {
		return nil, errorx.Wrap(ErrAchievementLocked, errorx.Validation)
	}

	unlock, created, err := service.unlock(ctx, userID, *def)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !created {
		// lost the race, the other writer's row is the unlock
		return unlock, nil
	}

	return unlock, nil
}

// unlock inserts the user_achievement row and awards its XP in one
// transaction. The unique index makes the insert a no-op on replays, in which
// case the existing row comes back and no XP moves.
func (service *ServiceGamification) unlock(ctx context.Context, userID string, def models.Achievement) (*models.UserAchievement, bool, error) {
	row := &models.UserAchievement{
		UserID:          userID,
		AchievementSlug: def.Slug,
		UnlockedAt:      time.Now(),
	}

	var created bool
	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		created, err = datastore.InsertUserAchievement(ctx, tx, row)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		return datastore.AddUserXP(ctx, tx, userID, def.XPReward)
	})
	if err != nil {
		return nil, false, err
	}

	if !created {
		existing, err := datastore.FindUserAchievement(ctx, service.postgresDB, userID, def.Slug)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	service.publishXP(ctx, userID, def.XPReward)
	_ = service.cache.Delete(ctx, DBKeyUserStats(userID))

	row.Achievement = &def
	return row, true, nil
}

// AwardXP credits XP inside the caller's transaction. The leaderboard update
// happens after commit via PublishXP.
func (service *ServiceGamification) AwardXP(ctx context.Context, tx bun.IDB, userID string, xp int) error {
	return datastore.AddUserXP(ctx, tx, userID, xp)
}

// PublishXP mirrors an XP award into the redis leaderboards.
func (service *ServiceGamification) PublishXP(ctx context.Context, userID string, xp int) {
	service.publishXP(ctx, userID, xp)
}

func (service *ServiceGamification) publishXP(ctx context.Context, userID string, xp int) {
	if xp <= 0 {
		return
	}
	//nolint:errcheck
	redis_store.IncrLeaderboardScore(ctx, service.redisDB, redis_store.LEADERBOARD_OVERALL, userID, xp)

	loc := service.serviceConfig.GetLocation(ctx)
	resolver := gamification.NewPeriodResolver(loc)
	//nolint:errcheck
	redis_store.IncrWeeklyLeaderboardScore(ctx, service.redisDB, resolver.StartOfWeek(time.Now().In(loc)), userID, xp)

	_ = service.cache.Delete(ctx, DBKeyUserStats(userID))
}
