package clock

import (
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/port/handler"
)

func init() {
	handler.Register(capability.Time, func(_ handler.Deps) (handler.Handler, error) {
		return NewTime(), nil
	})
	handler.Register(capability.Date, func(_ handler.Deps) (handler.Handler, error) {
		return NewDate(), nil
	})
}
