package handler

import (
	"errors"
	"strconv"

	"flirtquest/internal/models"
	"flirtquest/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupMission struct {
	container *do.Injector
}

func (gr *groupMission) Board(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceMission, err := do.Invoke[*services.ServiceMission](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	board, err := serviceMission.Board(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, board, nil)
}

func (gr *groupMission) Daily(c echo.Context) error {
	return gr.boardByType(c, models.MissionDaily)
}

func (gr *groupMission) Weekly(c echo.Context) error {
	return gr.boardByType(c, models.MissionWeekly)
}

func (gr *groupMission) boardByType(c echo.Context, missionType string) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceMission, err := do.Invoke[*services.ServiceMission](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	board, err := serviceMission.BoardByType(ctx, user.ID, missionType)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, board, nil)
}

func (gr *groupMission) History(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	serviceMission, err := do.Invoke[*services.ServiceMission](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	history, err := serviceMission.History(ctx, user.ID, limit, offset)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, history, nil)
}

func (gr *groupMission) Start(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceMission, err := do.Invoke[*services.ServiceMission](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	instance, err := serviceMission.Start(ctx, user.ID, c.Param("slug"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, instance, nil)
}

func (gr *groupMission) Complete(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceMission, err := do.Invoke[*services.ServiceMission](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	instance, err := serviceMission.Complete(ctx, user.ID, c.Param("slug"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, instance, nil)
}

func (gr *groupMission) Progress(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceMission, err := do.Invoke[*services.ServiceMission](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	instance, err := serviceMission.RefreshProgress(ctx, user.ID, c.Param("slug"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, instance, nil)
}

func (gr *groupMission) CreateCustom(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var input services.CreateCustomMissionInput
	if err := c.Bind(&input); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid payload"), errorx.Validation))
	}

	serviceMission, err := do.Invoke[*services.ServiceMission](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	mission, err := serviceMission.CreateCustomMission(ctx, user.ID, &input)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, mission, nil)
}

func (gr *groupMission) Suggestions(c echo.Context) error {
	ctx := c.Request().Context()

	_, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	count, _ := strconv.Atoi(c.QueryParam("count"))

	serviceMission, err := do.Invoke[*services.ServiceMission](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	suggestions, err := serviceMission.Suggestions(ctx, count)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, suggestions, nil)
}
