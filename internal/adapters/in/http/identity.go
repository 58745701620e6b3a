package http

import (
	"net/http"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	actorKey = "actor"
)

// Identity resolves the caller from the headers set by the gateway in front of
// the service. Requests without a valid identity are rejected with 401.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := kernel.UUIDFromString(c.Request().Header.Get(HeaderUserID))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed "+HeaderUserID)
			}
			role, err := kernel.ParseRole(c.Request().Header.Get(HeaderUserRole))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or unknown "+HeaderUserRole)
			}
			actor, err := kernel.NewActor(id, role)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) kernel.Actor {
	actor, _ := c.Get(actorKey).(kernel.Actor)
	return actor
}

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param(name))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}
