package persona

import (
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/port/handler"
)

func init() {
	handler.Register(capability.Greeting, func(_ handler.Deps) (handler.Handler, error) {
		return NewGreeting(), nil
	})
	handler.Register(capability.Joke, func(_ handler.Deps) (handler.Handler, error) {
		return NewJoke(), nil
	})
	handler.Register(capability.Identity, func(deps handler.Deps) (handler.Handler, error) {
		return NewIdentity(deps.Store, deps.Logger), nil
	})
}
