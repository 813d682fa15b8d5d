package main

// Capability provider blank imports. Each import activates a self-registering
// handler; add new capabilities here as they are implemented.

import (
	_ "github.com/arenlabs/aren/internal/adapter/apps"
	_ "github.com/arenlabs/aren/internal/adapter/calc"
	_ "github.com/arenlabs/aren/internal/adapter/clock"
	_ "github.com/arenlabs/aren/internal/adapter/persona"
	_ "github.com/arenlabs/aren/internal/adapter/search"
	_ "github.com/arenlabs/aren/internal/adapter/translate"
	_ "github.com/arenlabs/aren/internal/adapter/weather"
)
