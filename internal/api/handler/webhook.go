package handler

import (
	"errors"
	"net/http"

	"flirtquest/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupWebhook struct {
	container *do.Injector
}

func (gr *groupWebhook) Verify(c echo.Context) error {
	serviceMessaging, err := do.Invoke[*services.ServiceMessaging](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	challenge, err := serviceMessaging.VerifyWebhook(
		c.QueryParam("hub.mode"),
		c.QueryParam("hub.verify_token"),
		c.QueryParam("hub.challenge"),
	)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return c.String(http.StatusOK, challenge)
}

func (gr *groupWebhook) Receive(c echo.Context) error {
	ctx := c.Request().Context()

	var payload services.WebhookPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid payload"), errorx.Validation))
	}

	serviceMessaging, err := do.Invoke[*services.ServiceMessaging](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	// inbound providers retry on non-200, so report accepted even when some
	// messages were skipped
	_ = serviceMessaging.HandleInbound(ctx, &payload)

	return httpx.RestAbort(c, map[string]any{"received": true}, nil)
}
