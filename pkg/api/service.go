// Package api exposes the compound registry over HTTP and MCP. Both
// transports dispatch into the same kit.Endpoint values; the handlers only do
// decode/encode work.
package api

import (
	"sync"

	"github.com/supptracker/compound-registry/pkg/catalog"
	"github.com/supptracker/compound-registry/pkg/compound"
	"github.com/supptracker/compound-registry/pkg/interaction"
)

// Service bundles the live dataset behind the endpoints. Reload swaps
// the whole dataset atomically, so in-flight requests always see one
// consistent catalog generation.
type Service struct {
	registry *compound.Registry

	mu      sync.RWMutex
	set     *interaction.Set
	sources map[string]interaction.Source
	rules   interaction.Rules
}

// NewService builds a service over one loaded catalog.
func NewService(data *catalog.Data) *Service {
	s := &Service{registry: compound.NewRegistry(data.Compounds)}
	s.install(data)
	return s
}

// Reload replaces the dataset. The compound registry rebuilds its index
// aside and swaps, so readers never block on the rebuild.
func (s *Service) Reload(data *catalog.Data) {
	s.registry.SetCatalog(data.Compounds)
	s.install(data)
}

func (s *Service) install(data *catalog.Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = interaction.NewSet(data.Interactions)
	s.sources = data.Sources
	s.rules = data.Rules
}

// Registry returns the compound registry. It is stable across reloads.
func (s *Service) Registry() *compound.Registry { return s.registry }

func (s *Service) interactions() (*interaction.Set, interaction.Rules) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set, s.rules
}

func (s *Service) sourceMap() map[string]interaction.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sources
}
