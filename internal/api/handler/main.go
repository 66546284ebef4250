package handler

import (
	"net/http"

	"flirtquest/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "💘")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}

		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})
		routesAPIv1.Use(cors)

		a := groupAuth{cfg.Container}
		routesAPIv1.POST("/auth/signup", a.Register)
		routesAPIv1.POST("/auth/signin", a.Login)
		routesAPIv1.POST("/auth/refresh", a.Refresh)
		routesAPIv1.POST("/auth/logout", a.Logout)

		w := groupWebhook{cfg.Container}
		routesAPIv1.GET("/webhooks/whatsapp", w.Verify)
		routesAPIv1.POST("/webhooks/whatsapp", w.Receive)

		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated request.

		g := groupGamification{cfg.Container}

		u := groupUser{cfg.Container}
		routesAPIv1.GET("/user/me", u.Me)
		routesAPIv1.PATCH("/user/me", u.UpdateProfile)
		routesAPIv1.PUT("/user/me/persona", u.UpsertPersona)
		routesAPIv1.GET("/user/me/stats", g.GetStats)
		routesAPIv1.GET("/user/me/subscription", u.GetSubscription)
		routesAPIv1.DELETE("/user/me", u.Deactivate)

		i := groupInteraction{cfg.Container}
		routesAPIv1.POST("/interactions", i.Submit)
		routesAPIv1.POST("/interactions/audio", i.SubmitAudio)
		routesAPIv1.POST("/interactions/image", i.SubmitImage)
		routesAPIv1.GET("/interactions", i.History)
		routesAPIv1.GET("/interactions/stats", i.Stats)

		routesAPIv1.GET("/gamification/profile", g.Profile)
		routesAPIv1.GET("/gamification/stats", g.GetStats)
		routesAPIv1.GET("/gamification/level", g.GetLevel)
		routesAPIv1.GET("/gamification/streak", g.GetStreak)
		routesAPIv1.GET("/gamification/skills", g.Skills)
		routesAPIv1.GET("/achievements", g.ListAchievements)
		routesAPIv1.POST("/achievements/check", g.CheckAchievements)
		routesAPIv1.POST("/achievements/:slug/claim", g.ClaimAchievement)

		m := groupMission{cfg.Container}
		routesAPIv1.GET("/missions", m.Board)
		routesAPIv1.GET("/missions/daily", m.Daily)
		routesAPIv1.GET("/missions/weekly", m.Weekly)
		routesAPIv1.GET("/missions/history", m.History)
		routesAPIv1.GET("/missions/progress", m.Board)
		routesAPIv1.GET("/missions/suggestions", m.Suggestions)
		routesAPIv1.POST("/missions/custom", m.CreateCustom)
		routesAPIv1.POST("/missions/:slug/start", m.Start)
		routesAPIv1.POST("/missions/:slug/complete", m.Complete)
		routesAPIv1.GET("/missions/:slug/progress", m.Progress)

		l := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard/overall", l.GetOverallLeaderboard)
		routesAPIv1.GET("/leaderboard/weekly", l.GetWeeklyLeaderboard)
	}

	return r, nil
}
