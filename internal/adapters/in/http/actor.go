package http

import (
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	headerActorID        = "X-Actor-ID"
	headerActorType      = "X-Actor-Type"
	headerIdempotencyKey = "Idempotency-Key"
)

// actorFromHeaders reads the identity the gateway resolved for the caller.
// System actors need no id; everyone else must send one.
func actorFromHeaders(c echo.Context) (kernel.Actor, error) {
	typ, err := kernel.ParseActorType(strings.TrimSpace(c.Request().Header.Get(headerActorType)))
	if err != nil {
		return kernel.Actor{}, err
	}
	if typ == kernel.ActorSystem {
		return kernel.SystemActor(), nil
	}

	raw := strings.TrimSpace(c.Request().Header.Get(headerActorID))
	if raw == "" {
		return kernel.Actor{}, errs.NewValueIsRequiredError(headerActorID)
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.Actor{}, errs.NewValueIsInvalidErrorWithCause(headerActorID, err)
	}

	return kernel.NewActor(id, typ)
}
