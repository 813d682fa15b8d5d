package calc

import (
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/port/handler"
)

func init() {
	handler.Register(capability.Calculation, func(_ handler.Deps) (handler.Handler, error) {
		return New(), nil
	})
}
