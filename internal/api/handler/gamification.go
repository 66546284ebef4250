package handler

import (
	"flirtquest/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupGamification struct {
	container *do.Injector
}

func (gr *groupGamification) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceGamification, err := do.Invoke[*services.ServiceGamification](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	stats, err := serviceGamification.GetStats(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	level, err := serviceGamification.GetLevel(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]any{
		"stats": stats,
		"level": level,
	}, nil)
}

func (gr *groupGamification) Profile(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceGamification, err := do.Invoke[*services.ServiceGamification](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	profile, err := serviceGamification.Profile(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, profile, nil)
}

func (gr *groupGamification) Skills(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceGamification, err := do.Invoke[*services.ServiceGamification](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	skills, err := serviceGamification.Skills(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, skills, nil)
}

func (gr *groupGamification) GetLevel(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceGamification, err := do.Invoke[*services.ServiceGamification](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	level, err := serviceGamification.GetLevel(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, level, nil)
}

func (gr *groupGamification) GetStreak(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceGamification, err := do.Invoke[*services.ServiceGamification](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	streak, err := serviceGamification.GetStreak(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, streak, nil)
}

func (gr *groupGamification) ListAchievements(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceGamification, err := do.Invoke[*services.ServiceGamification](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	achievements, err := serviceGamification.ListAchievements(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, achievements, nil)
}

func (gr *groupGamification) CheckAchievements(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceGamification, err := do.Invoke[*services.ServiceGamification](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	unlocked, err := serviceGamification.CheckAchievements(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]any{"unlocked": unlocked}, nil)
}

func (gr *groupGamification) ClaimAchievement(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceGamification, err := do.Invoke[*services.ServiceGamification](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	unlock, err := serviceGamification.ClaimAchievement(ctx, user.ID, c.Param("slug"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, unlock, nil)
}
