package main

import (
	"context"
	"log"

	"flirtquest/internal/datastore"
	"flirtquest/internal/datastore/redis_store"
	"flirtquest/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

type LeaderboardJob struct {
	Redis redis.UniversalClient
	Db    *bun.DB
}

func NewLeaderboardJob(redisDB redis.UniversalClient, db *bun.DB) *LeaderboardJob {
	return &LeaderboardJob{Redis: redisDB, Db: db}
}

func (j *LeaderboardJob) Start(cronRunner *cron.Cron) {
	spec := "0 0 * * 0"
	config, err := datastore.GetConfig(context.Background(), j.Db, services.CONFIG_WEEKLY_RESET_CRON)
	if err == nil && config.Value != "" {
		spec = config.Value
	}

	_, err = cronRunner.AddFunc(spec, j.run)
	log.Println("Leaderboard cronjob start, cron:", spec, err)

	// reconcile at boot so a fresh redis starts with real totals
	j.rebuild()
}

// run reconciles the overall board with postgres at each weekly rollover.
// Weekly boards are dated keys with TTLs, a new week simply starts empty.
func (j *LeaderboardJob) run() {
	j.rebuild()
}

func (j *LeaderboardJob) rebuild() {
	ctx := context.Background()

	err := redis_store.ClearLeaderboard(ctx, j.Redis, redis_store.LEADERBOARD_OVERALL)
	if err != nil {
		log.Println("leaderboard clear failed:", err)
		return
	}

	const page = 500
	total := 0
	for offset := 0; ; offset += page {
		batch, err := datastore.GetTopUserStats(ctx, j.Db, page, offset)
		if err != nil {
			log.Println("leaderboard rebuild failed:", err)
			return
		}
		if len(batch) == 0 {
			break
		}
		for _, row := range batch {
			err = redis_store.SetLeaderboardScore(ctx, j.Redis, redis_store.LEADERBOARD_OVERALL, row.UserID, row.TotalXP)
			if err != nil {
				log.Println("leaderboard rebuild failed:", err)
				return
			}
		}
		total += len(batch)
		if len(batch) < page {
			break
		}
	}

	log.Println("leaderboard rebuilt,", total, "users")
}
