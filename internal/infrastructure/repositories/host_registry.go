package repositories

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
	domainRepos "github.com/rios0rios0/orgmirror/internal/domain/repositories"
)

// HostFactory is a constructor function that creates a HostRepository from the run settings.
type HostFactory func(settings *entities.Settings) (domainRepos.HostRepository, error)

// HostRegistry manages all registered code-hosting implementations.
type HostRegistry struct {
	hosts map[string]HostFactory
}

// NewHostRegistry creates an empty host registry.
func NewHostRegistry() *HostRegistry {
	return &HostRegistry{
		hosts: make(map[string]HostFactory),
	}
}

// Register adds a host factory under the given name (e.g. "github").
func (r *HostRegistry) Register(name string, factory HostFactory) {
	r.hosts[name] = factory
}

// Get returns a configured host instance for the given name.
func (r *HostRegistry) Get(name string, settings *entities.Settings) (domainRepos.HostRepository, error) {
	factory, ok := r.hosts[name]
	if !ok {
		return nil, fmt.Errorf("unknown host type: %q (registered: %s)", name, strings.Join(r.Names(), ", "))
	}
	host, err := factory(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize host %q: %w", name, err)
	}
	return host, nil
}

// Names returns the sorted list of registered host names.
func (r *HostRegistry) Names() []string {
	names := make([]string, 0, len(r.hosts))
	for name := range r.hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
