package main

import (
	"context"
	"log"
	"time"

	"flirtquest/internal/datastore"
	"flirtquest/internal/gamification"
	"flirtquest/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

type StreakJob struct {
	Db *bun.DB
}

func NewStreakJob(db *bun.DB) *StreakJob {
	return &StreakJob{Db: db}
}

func (j *StreakJob) Start(cronRunner *cron.Cron) {
	spec := "15 0 * * *"
	config, err := datastore.GetConfig(context.Background(), j.Db, services.CONFIG_STREAK_SWEEP_CRON)
	if err == nil && config.Value != "" {
		spec = config.Value
	}

	_, err = cronRunner.AddFunc(spec, j.run)
	log.Println("Streak cronjob start, cron:", spec, err)
}

// run zeroes the streak of anyone whose last activity is older than
// yesterday. Users active yesterday keep theirs until today ends.
func (j *StreakJob) run() {
	ctx := context.Background()

	loc := time.UTC
	config, err := datastore.GetConfig(ctx, j.Db, services.CONFIG_TIMEZONE)
	if err == nil {
		if parsed, err := time.LoadLocation(config.Value); err == nil {
			loc = parsed
		}
	}

	resolver := gamification.NewPeriodResolver(loc)
	cutoff := resolver.StartOfDay(time.Now().In(loc)).AddDate(0, 0, -1)

	affected, err := datastore.ResetExpiredStreaks(ctx, j.Db, cutoff)
	if err != nil {
		log.Println("streak sweep failed:", err)
		return
	}

	log.Println("streak sweep reset", affected, "users")
}
