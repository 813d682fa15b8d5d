package apps

import (
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/port/handler"
)

func init() {
	handler.Register(capability.LaunchApp, func(deps handler.Deps) (handler.Handler, error) {
		return New(deps.Logger), nil
	})
}
