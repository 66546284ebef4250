package handler

import (
	"context"
	"errors"
	"strings"

	"flirtquest/internal/models"
	"flirtquest/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type ctxKey string

var ctxKeyAuthUser ctxKey = "AUTH_USER"

// Authn attaches the token's identity to the request context. It does NOT
// terminate unauthenticated requests; handlers resolve the user when they
// need one.
func Authn(verifier interface {
	Validate(token string) (*models.UserFromAuth, error)
},
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}

			parts := strings.Split(header, "Bearer")
			if len(parts) != 2 {
				return next(c)
			}

			token := strings.TrimSpace(parts[1])
			if len(token) == 0 {
				return next(c)
			}

			user, err := verifier.Validate(token)
			if err != nil {
				// although it's a client error, we don't want to leak details
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("invalid access token"), errorx.Authn), -1)
				return nil
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ctxKeyAuthUser, user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func ResolveValidUser(ctx context.Context, container *do.Injector) (*models.User, error) {
	userAuth, ok := ctx.Value(ctxKeyAuthUser).(*models.UserFromAuth)
	if !ok {
		return nil, errorx.Wrap(errors.New("missing session"), errorx.Authn)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](container)
	if err != nil {
		return nil, err
	}

	user, err := serviceUser.FindUserByID(ctx, userAuth.ID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errorx.Wrap(errors.New("account deactivated"), errorx.Authn)
	}

	return user, nil
}
