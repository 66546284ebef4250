package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"flirtquest/internal/api/handler"
	"flirtquest/internal/interfaces"
	"flirtquest/internal/pkg/caching"
	"flirtquest/internal/pkg/limiter"
	"flirtquest/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
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
	vs, err := env.EnvsRequired(
		"JWT_SECRET",
		"DB_DSN",
		"REDIS_URL",
	)
	if err != nil {
		log.Fatal(err)
	}

	container := NewContainer(vs)

	app := &cli.App{
		Name: "api",
		Commands: []*cli.Command{
			commandServer(container),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandServer(container *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "0.0.0.0:8080",
				Usage: "serve address",
			},
		},
		Action: func(c *cli.Context) error {
			vs := do.MustInvokeNamed[map[string]string](container, "envs")
			router, err := handler.New(&handler.Config{
				Container: container,
				Mode:      vs["API_MODE"],
				Origins:   strings.Split(vs["API_ORIGINS"], ","),
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:    c.String("addr"),
				Handler: router,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errWg, errCtx := errgroup.WithContext(ctx)

			errWg.Go(func() error {
				log.Printf("ListenAndServe: %s (%s)\n", c.String("addr"), vs["API_MODE"])
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			})

			errWg.Go(func() error {
				<-errCtx.Done()
				return srv.Shutdown(context.TODO())
			})

			return errWg.Wait()
		},
	}
}

func NewContainer(vs map[string]string) *do.Injector {
	injector := do.New()
	vs["API_MODE"] = os.Getenv("API_MODE")
	vs["API_ORIGINS"] = os.Getenv("API_ORIGINS")
	vs["AI_BASE_URL"] = os.Getenv("AI_BASE_URL")
	vs["AI_API_KEY"] = os.Getenv("AI_API_KEY")
	vs["WHATSAPP_API_URL"] = os.Getenv("WHATSAPP_API_URL")
	vs["WHATSAPP_ACCESS_TOKEN"] = os.Getenv("WHATSAPP_ACCESS_TOKEN")
	vs["WHATSAPP_VERIFY_TOKEN"] = os.Getenv("WHATSAPP_VERIFY_TOKEN")

	if vs["API_MODE"] == "" {
		vs["API_MODE"] = "production"
	}
	if vs["API_ORIGINS"] == "" {
		vs["API_ORIGINS"] = "*"
	}

	do.ProvideNamedValue(injector, "envs", vs)

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(os.Getenv("DB_DSN")),
		))

		return bun.NewDB(sqldb, pgdialect.New()), nil
	})

	do.ProvideNamed(injector, "db-readonly", func(i *do.Injector) (*bun.DB, error) {
		dsn := os.Getenv("DB_DSN_READONLY")
		if dsn == "" {
			return do.Invoke[*bun.DB](i)
		}

		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(dsn),
		))

		return bun.NewDB(sqldb, pgdialect.New()), nil
	})

	do.ProvideNamed(injector, "redis-db", func(i *do.Injector) (redis.UniversalClient, error) {
		return db.InitRedis(&db.RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		})
	})

	do.ProvideNamed(injector, "redis-cache", func(i *do.Injector) (redis.UniversalClient, error) {
		url := os.Getenv("REDIS_CACHE")
		if url == "" {
			return do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		}
		return db.InitRedis(&db.RedisConfig{URL: url})
	})

	do.ProvideNamed(injector, "redis-cache-readonly", func(i *do.Injector) (redis.UniversalClient, error) {
		url := os.Getenv("REDIS_CACHE_READONLY")
		if url == "" {
			return do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		}
		return db.InitRedis(&db.RedisConfig{URL: url})
	})

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (caching.ReadOnlyCache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache-readonly")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		if err != nil {
			return nil, err
		}

		return limiter.NewLimiter(dbRedis)
	})

	do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		if err != nil {
			return nil, err
		}

		pool := goredis.NewPool(dbRedis)
		return redsync.New(pool), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.Authentication, error) {
		return services.NewAuthentication(vs["JWT_SECRET"])
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceConfig, error) {
		return services.NewServiceConfig(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceUser, error) {
		return services.NewServiceUser(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceAI, error) {
		return services.NewServiceAI(injector, vs["AI_BASE_URL"], vs["AI_API_KEY"])
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceGamification, error) {
		return services.NewServiceGamification(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceInteraction, error) {
		return services.NewServiceInteraction(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceMission, error) {
		return services.NewServiceMission(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceLeaderboard, error) {
		return services.NewServiceLeaderboard(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceMessaging, error) {
		return services.NewServiceMessaging(injector, vs["WHATSAPP_API_URL"], vs["WHATSAPP_ACCESS_TOKEN"], vs["WHATSAPP_VERIFY_TOKEN"])
	})

	return injector
}
