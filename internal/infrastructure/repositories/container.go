package repositories

import (
	"go.uber.org/dig"

	ghRepo "github.com/rios0rios0/orgmirror/internal/infrastructure/repositories/github"
	metricsRepo "github.com/rios0rios0/orgmirror/internal/infrastructure/repositories/metrics"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register host registry with all host factories
	if err := container.Provide(func() *HostRegistry {
		reg := NewHostRegistry()
		reg.Register("github", ghRepo.NewHostRepository)
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(metricsRepo.NewMetricsRepository); err != nil {
		return err
	}

	return nil
}
