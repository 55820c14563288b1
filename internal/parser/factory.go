package parser

import (
	"fmt"
	"sort"
	"sync"

	"billrecon/internal/config"
	"billrecon/internal/port"
)

// ProviderFactory creates a PageExtractor from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.PageExtractor, error)

var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// RegisteredProviders returns the names of all registered providers, sorted.
func RegisteredProviders() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewExtractor creates a PageExtractor from a provider config using the registered factory.
func NewExtractor(cfg *config.ParserProviderConfig) (port.PageExtractor, error) {
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("parser provider %s: api key is required", cfg.Provider)
	}
	return factory(cfg)
}

// BuildExtractor builds the configured extractor chain. A single configured
// provider is returned as is; additional tiers are wrapped in a FallbackExtractor.
func BuildExtractor(cfg *config.ParserConfig, opts ...FallbackOption) (port.PageExtractor, error) {
	tiers := []*config.ParserProviderConfig{cfg.PrimaryConfig()}
	if s := cfg.SecondaryConfig(); s != nil {
		tiers = append(tiers, s)
	}
	if t := cfg.TertiaryConfig(); t != nil {
		tiers = append(tiers, t)
	}

	extractors := make([]port.PageExtractor, 0, len(tiers))
	names := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		ex, err := NewExtractor(tier)
		if err != nil {
			return nil, err
		}
		extractors = append(extractors, ex)
		names = append(names, tier.Provider)
	}

	if len(extractors) == 1 {
		return extractors[0], nil
	}
	return NewFallbackExtractor(extractors, names, opts...), nil
}
