package services

import (
	"context"
	"time"

	"flirtquest/internal/datastore"
	"flirtquest/internal/datastore/redis_store"
	"flirtquest/internal/gamification"
	"flirtquest/internal/models"
	"flirtquest/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceLeaderboard struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	readonlyPostgresDB *bun.DB
	postgresDB         *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig *ServiceConfig
}

// neighbors shown on each side when the caller sits outside the first page
const aroundMeRadius = 2

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
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

	return &ServiceLeaderboard{container, redisDB, readonlyPostgresDB, postgresDB, cache, readonlyCache, serviceConfig}, nil
}

// GetLeaderboard reads the requested board from redis and hydrates names and
// photos from postgres. The caller's own row rides along even when they are
// outside the page.
func (service *ServiceLeaderboard) GetLeaderboard(ctx context.Context, period, userID string) (*models.LeaderboardResponse, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, LEADERBOARD_DEFAULT_LIMIT)

	var items []*models.LeaderboardItem
	var around []*models.LeaderboardItem
	var me *models.LeaderboardItem
	var err error

	switch period {
	case redis_store.LEADERBOARD_WEEKLY:
		resolver := gamification.NewPeriodResolver(service.serviceConfig.GetLocation(ctx))
		weekStart := resolver.StartOfWeek(time.Now().In(resolver.Location()))
		items, err = redis_store.GetWeeklyLeaderboard(ctx, service.redisDB, weekStart, limit)
		if err == nil && userID != "" {
			me, _ = redis_store.GetWeeklyLeaderboardRank(ctx, service.redisDB, weekStart, userID)
			if me != nil && me.Rank > int64(limit) {
				around, _ = redis_store.GetWeeklyLeaderboardWindow(ctx, service.redisDB, weekStart,
					me.Rank-1-aroundMeRadius, me.Rank-1+aroundMeRadius)
			}
		}
	default:
		period = redis_store.LEADERBOARD_OVERALL
		items, err = redis_store.GetLeaderboard(ctx, service.redisDB, redis_store.LEADERBOARD_OVERALL, limit)
		if err == nil && userID != "" {
			me, _ = redis_store.GetLeaderboardRank(ctx, service.redisDB, redis_store.LEADERBOARD_OVERALL, userID)
			if me != nil && me.Rank > int64(limit) {
				around, _ = redis_store.GetLeaderboardWindow(ctx, service.redisDB, redis_store.LEADERBOARD_OVERALL,
					me.Rank-1-aroundMeRadius, me.Rank-1+aroundMeRadius)
			}
		}
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	userIDs := make([]string, 0, len(items)+len(around)+1)
	for _, item := range items {
		userIDs = append(userIDs, item.UserID)
	}
	for _, item := range around {
		userIDs = append(userIDs, item.UserID)
	}
	if me != nil {
		userIDs = append(userIDs, me.UserID)
	}

	users, err := datastore.GetUsersByIDs(ctx, service.readonlyPostgresDB, userIDs)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	byID := make(map[string]*models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	response := &models.LeaderboardResponse{
		Period:  period,
		Entries: make([]models.LeaderboardEntry, 0, len(items)),
	}
	for _, item := range items {
		response.Entries = append(response.Entries, buildEntry(item, byID[item.UserID]))
	}
	if me != nil {
		entry := buildEntry(me, byID[me.UserID])
		response.Me = &entry
	}
	for _, item := range around {
		response.Around = append(response.Around, buildEntry(item, byID[item.UserID]))
	}

	return response, nil
}

func buildEntry(item *models.LeaderboardItem, user *models.User) models.LeaderboardEntry {
	entry := models.LeaderboardEntry{
		Rank:    item.Rank,
		UserID:  item.UserID,
		TotalXP: int(item.Score),
		Level:   gamification.LevelFromXP(int(item.Score)),
	}
	if user != nil {
		entry.Name = user.FirstName
		entry.PhotoURL = user.PhotoURL
	}
	return entry
}

// Rebuild reloads the overall board from user_stats, for recovery after a
// redis flush.
func (service *ServiceLeaderboard) Rebuild(ctx context.Context) error {
	err := redis_store.ClearLeaderboard(ctx, service.redisDB, redis_store.LEADERBOARD_OVERALL)
	if err != nil {
		return err
	}

	const page = 500
	for offset := 0; ; offset += page {
		batch, err := datastore.GetTopUserStats(ctx, service.readonlyPostgresDB, page, offset)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		for _, row := range batch {
			err = redis_store.SetLeaderboardScore(ctx, service.redisDB, redis_store.LEADERBOARD_OVERALL, row.UserID, row.TotalXP)
			if err != nil {
				return err
			}
		}
		if len(batch) < page {
			return nil
		}
	}
}
