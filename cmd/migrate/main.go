package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"flirtquest/internal/datastore"
	"flirtquest/internal/models"
	"flirtquest/internal/services"

	"github.com/joho/godotenv"
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
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandSeed(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUser(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableSubscription(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTablePersona(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableInteraction(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUserStats(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableAchievement(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableMission(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableConfig(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			log.Println("migration done")
			return nil
		},
	}
}

func commandSeed() *cli.Command {
	return &cli.Command{
		Name: "seed",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			for _, achievement := range seedAchievements() {
				err = datastore.UpsertAchievement(ctx, db, achievement)
				if err != nil {
					log.Fatal(err)
				}
			}

			for _, mission := range seedMissions() {
				err = datastore.UpsertMission(ctx, db, mission)
				if err != nil {
					log.Fatal(err)
				}
			}

			for key, value := range seedConfigs() {
				err = datastore.SeedConfig(ctx, db, key, value)
				if err != nil {
					log.Fatal(err)
				}
			}

			log.Println("seed done")
			return nil
		},
	}
}

func seedAchievements() []*models.Achievement {
	return []*models.Achievement{
		{
			Slug:        "first-interaction",
			Name:        "Primeira Interação",
			Description: "Complete sua primeira conversa com o avatar",
			Kind:        models.AchievementInteractionCount,
			Requirement: models.AchievementRequirement{Interactions: 1},
			Icon:        "🎯",
			XPReward:    50,
			Active:      true,
		},
		{
			Slug:        "charmer",
			Name:        "Charmoso(a)",
			Description: "Obtenha uma pontuação acima de 80 em 5 interações",
			Kind:        models.AchievementSkillLevel,
			Requirement: models.AchievementRequirement{HighScores: 5, MinScore: 80},
			Icon:        "💫",
			XPReward:    100,
			Active:      true,
		},
		{
			Slug:        "fashion-guru",
			Name:        "Guru da Moda",
			Description: "Analise 10 looks diferentes",
			Kind:        models.AchievementInteractionCount,
			Requirement: models.AchievementRequirement{Interactions: 10},
			Icon:        "👗",
			XPReward:    75,
			Active:      true,
		},
		{
			Slug:        "daily-warrior",
			Name:        "Guerreiro(a) Diário",
			Description: "Complete missões diárias por 7 dias consecutivos",
			Kind:        models.AchievementStreak,
			Requirement: models.AchievementRequirement{DailyStreak: 7},
			Icon:        "🔥",
			XPReward:    200,
			Active:      true,
		},
	}
}

func seedMissions() []*models.Mission {
	return []*models.Mission{
		{
			Slug:        "daily-compliment",
			Type:        models.MissionDaily,
			Title:       "Elogio Criativo",
			Description: "Crie um elogio original e criativo",
			Difficulty:  1,
			Requirement: models.MissionRequirement{
				Kind:     models.RequirementTextInteraction,
				Count:    1,
				MinScore: 70,
			},
			XPReward: 25,
		},
		{
			Slug:        "daily-question",
			Type:        models.MissionDaily,
			Title:       "Pergunta Inteligente",
			Description: "Faça uma pergunta interessante para iniciar uma conversa",
			Difficulty:  1,
			Requirement: models.MissionRequirement{
				Kind:        models.RequirementTextInteraction,
				Count:       1,
				MustContain: "?",
				MinLength:   15,
			},
			XPReward: 20,
		},
		{
			Slug:        "weekly-fashion",
			Type:        models.MissionWeekly,
			Title:       "Análise de Estilo",
			Description: "Analise 3 looks diferentes durante a semana",
			Difficulty:  2,
			Requirement: models.MissionRequirement{
				Kind:  models.RequirementImageAnalysis,
				Count: 3,
			},
			XPReward: 100,
		},
	}
}

func seedConfigs() map[string]string {
	return map[string]string{
		services.CONFIG_SERVER_MODE:              services.SERVER_MODE_PRODUCTION,
		services.CONFIG_TIMEZONE:                 "America/Sao_Paulo",
		services.CONFIG_LEADERBOARD_LIMIT:        "20",
		services.CONFIG_DAILY_INTERACTION_LIMIT:  "50",
		services.CONFIG_CUSTOM_MISSIONS_PER_WEEK: "3",
		services.CONFIG_AI_MODEL:                 "gpt-4o-mini",
		services.CONFIG_AI_MAX_TOKENS:            "300",
		services.CONFIG_STREAK_SWEEP_CRON:        "15 0 * * *",
		services.CONFIG_WEEKLY_RESET_CRON:        "0 0 * * 0",
		services.CONFIG_FREE_DAILY_MESSAGES:      "20",
		services.CONFIG_PREMIUM_DAILY_MESSAGES:   "200",
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
	))

	return bun.NewDB(sqldb, pgdialect.New()), nil
}
