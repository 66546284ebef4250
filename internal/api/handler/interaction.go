package handler

import (
	"errors"
	"strconv"

	"flirtquest/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupInteraction struct {
	container *do.Injector
}

func (gr *groupInteraction) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var input services.SubmitInteractionInput
	if err := c.Bind(&input); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid payload"), errorx.Validation))
	}

	serviceInteraction, err := do.Invoke[*services.ServiceInteraction](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceInteraction.Submit(ctx, user, &input)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, result, nil)
}

func (gr *groupInteraction) SubmitAudio(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	if _, err := c.FormFile("audio"); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("missing audio file"), errorx.Validation))
	}

	serviceInteraction, err := do.Invoke[*services.ServiceInteraction](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceInteraction.SubmitAudio(ctx, user, c.FormValue("channel"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, result, nil)
}

func (gr *groupInteraction) SubmitImage(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	if _, err := c.FormFile("image"); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("missing image file"), errorx.Validation))
	}

	serviceInteraction, err := do.Invoke[*services.ServiceInteraction](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceInteraction.SubmitImage(ctx, user, c.FormValue("event_type"), c.FormValue("channel"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, result, nil)
}

func (gr *groupInteraction) History(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	serviceInteraction, err := do.Invoke[*services.ServiceInteraction](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	interactions, err := serviceInteraction.History(ctx, user.ID, limit, offset)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, interactions, nil)
}

func (gr *groupInteraction) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceInteraction, err := do.Invoke[*services.ServiceInteraction](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	stats, err := serviceInteraction.Stats(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, stats, nil)
}
