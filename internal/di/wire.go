//go:build wireinject
// +build wireinject

package di

import (
	"FinChat/pkg/config"
	"FinChat/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// External clients
		ProvideOracle,
		ProvideCaches,

		// Pipeline services
		ProvideExtractor,
		ProvideResolver,
		ProvideDataProvider,

		// Use cases
		ProvideDispatcher,
		ProvideSynthesizer,

		// HTTP surface
		ProvideChatHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
