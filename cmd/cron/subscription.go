package main

import (
	"context"
	"log"
	"time"

	"flirtquest/internal/datastore"

	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

type SubscriptionJob struct {
	Db *bun.DB
}

func NewSubscriptionJob(db *bun.DB) *SubscriptionJob {
	return &SubscriptionJob{Db: db}
}

func (j *SubscriptionJob) Start(cronRunner *cron.Cron) {
	_, err := cronRunner.AddFunc("30 0 * * *", j.run)
	log.Println("Subscription cronjob start", err)
}

func (j *SubscriptionJob) run() {
	ctx := context.Background()

	affected, err := datastore.ExpireSubscriptionsBefore(ctx, j.Db, time.Now())
	if err != nil {
		log.Println("subscription sweep failed:", err)
		return
	}

	log.Println("subscription sweep expired", affected, "subscriptions")
}
