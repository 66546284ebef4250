package handler

import (
	"errors"

	"flirtquest/internal/interfaces"
	"flirtquest/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupAuth struct {
	container *do.Injector
}

func (gr *groupAuth) rateLimit(c echo.Context) error {
	limiter, err := do.Invoke[interfaces.Limiter](gr.container)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	err = limiter.Allow(c.Request().Context(), services.RateKeyAuth(c.RealIP()), redis_rate.PerMinute(services.AUTH_RATE_LIMIT_PER_MINUTE))
	if err != nil {
		return errorx.Wrap(err, errorx.RateLimiting)
	}

	return nil
}

func (gr *groupAuth) Register(c echo.Context) error {
	ctx := c.Request().Context()

	if err := gr.rateLimit(c); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var input services.RegisterInput
	if err := c.Bind(&input); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid payload"), errorx.Validation))
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	user, tokens, err := serviceUser.Register(ctx, &input)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]any{
		"user":   user,
		"tokens": tokens,
	}, nil)
}

func (gr *groupAuth) Login(c echo.Context) error {
	ctx := c.Request().Context()

	if err := gr.rateLimit(c); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&input); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid payload"), errorx.Validation))
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	user, tokens, err := serviceUser.Login(ctx, input.Email, input.Password)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]any{
		"user":   user,
		"tokens": tokens,
	}, nil)
}

func (gr *groupAuth) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&input); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid payload"), errorx.Validation))
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	tokens, err := serviceUser.Refresh(ctx, input.RefreshToken)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, tokens, nil)
}

func (gr *groupAuth) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&input); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid payload"), errorx.Validation))
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceUser.Logout(ctx, input.RefreshToken); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]any{"logged_out": true}, nil)
}
