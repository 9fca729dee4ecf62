package form

import (
	"github.com/goliatone/go-paramform/pkg/history"
	"github.com/goliatone/go-paramform/pkg/widgets"
)

type config struct {
	renderer Renderer
	registry *widgets.Registry
	history  *history.Cache
}

// Option configures a tree.
type Option func(*config)

// WithHistory shares cache with every node of the tree. Without it nodes
// neither record nor suggest previous values.
func WithHistory(cache *history.Cache) Option {
	return func(cfg *config) {
		cfg.history = cache
	}
}

// WithRegistry overrides the registry used to pick field kinds.
func WithRegistry(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}
