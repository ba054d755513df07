//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/atifjaved999/mini-coaching/internal/app"
	"github.com/atifjaved999/mini-coaching/internal/config"
	"github.com/atifjaved999/mini-coaching/internal/observability"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		RuntimeInfraSet,
		RepositorySet,
		SecuritySet,
		ServiceSet,
		HTTPSet,
		AppSet,
	))
}

func InitializeMigrationRunner() (*MigrationRunner, error) {
	panic(wire.Build(
		config.Load,
		observability.NewLogger,
		provideOpenDB,
		NewMigrationRunner,
	))
}
