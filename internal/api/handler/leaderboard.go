package handler

import (
	"flirtquest/internal/datastore/redis_store"
	"flirtquest/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupLeaderboard struct {
	container *do.Injector
}

func (gr *groupLeaderboard) board(c echo.Context, period string) error {
	ctx := c.Request().Context()

	userID := ""
	if user, err := ResolveValidUser(ctx, gr.container); err == nil {
		userID = user.ID
	}

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	response, err := serviceLeaderboard.GetLeaderboard(ctx, period, userID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, response, nil)
}

func (gr *groupLeaderboard) GetOverallLeaderboard(c echo.Context) error {
	return gr.board(c, redis_store.LEADERBOARD_OVERALL)
}

func (gr *groupLeaderboard) GetWeeklyLeaderboard(c echo.Context) error {
	return gr.board(c, redis_store.LEADERBOARD_WEEKLY)
}
