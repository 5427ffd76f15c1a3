//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"TopstepSentinel/internal/collector"
	"TopstepSentinel/internal/topstep"
)

// InitializeApp builds App via Wire. Caller must call the cleanup when done.
func InitializeApp(path ConfigPath) (*App, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		ProvideClient,
		ProvideRecorder,
		ProvideCollector,
		wire.Bind(new(collector.Fetcher), new(*topstep.Client)),
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
