package weather

import (
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/port/handler"
)

func init() {
	handler.Register(capability.Weather, func(deps handler.Deps) (handler.Handler, error) {
		return New(deps.Config.Weather, deps.Secrets, deps.HTTPClient, deps.Cache, deps.Logger), nil
	})
}
