package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "cronjob",
		Commands: []*cli.Command{
			commandCronjob(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandCronjob() *cli.Command {
	return &cli.Command{
		Name: "cron",
		Action: func(c *cli.Context) error {
			db, err := getDb()
			if err != nil {
				return err
			}
			redisDB, err := getRedis()
			if err != nil {
				return err
			}

			cronRunner := cron.New()

			streakJob := NewStreakJob(db)
			streakJob.Start(cronRunner)

			leaderboardJob := NewLeaderboardJob(redisDB, db)
			leaderboardJob.Start(cronRunner)

			subscriptionJob := NewSubscriptionJob(db)
			subscriptionJob.Start(cronRunner)

			log.Println("Start cronjob")
			cronRunner.Run()
			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
	))

	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func getRedis() (redis.UniversalClient, error) {
	return db.InitRedis(&db.RedisConfig{
		URL: os.Getenv("REDIS_URL"),
	})
}
