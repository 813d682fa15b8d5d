package translate

import (
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/port/handler"
)

func init() {
	handler.Register(capability.Translate, func(deps handler.Deps) (handler.Handler, error) {
		return New(deps.Config.Translate, deps.HTTPClient, deps.Logger), nil
	})
}
