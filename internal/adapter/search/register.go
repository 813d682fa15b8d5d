package search

import (
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/port/handler"
)

func init() {
	handler.Register(capability.Search, func(deps handler.Deps) (handler.Handler, error) {
		return New(deps.Config.Search, deps.HTTPClient, deps.Cache, deps.Logger), nil
	})
}
