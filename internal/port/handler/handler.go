// Package handler defines the capability handler port (interface) and the
// registry adapters register themselves into.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/arenlabs/aren/internal/config"
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/port/cache"
	"github.com/arenlabs/aren/internal/port/database"
	"github.com/arenlabs/aren/internal/secrets"
)

// Handler is the uniform contract every capability implementation satisfies.
// Extract runs before Invoke; ok=false means the input carries no usable
// arguments and the handler must not be invoked. Capabilities that take the
// raw input return it under the "input" key and always report ok.
type Handler interface {
	// Name returns the capability this handler serves (e.g. "weather").
	Name() string

	// Extract pulls handler-specific arguments out of the raw input.
	Extract(input string) (capability.Args, bool)

	// Invoke executes the capability and returns the user-facing response.
	Invoke(ctx context.Context, args capability.Args) (string, error)
}

// Deps carries the shared dependencies handler factories may draw from.
// Handlers take what they need and ignore the rest.
type Deps struct {
	Store      database.Store
	Cache      cache.Cache
	Secrets    *secrets.Vault
	HTTPClient *http.Client
	Logger     *slog.Logger
	Config     config.Config
}
