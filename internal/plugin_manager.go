package internal

import (
	"fmt"
	"maps"
	"slices"
)

// Factory builds a plugin of type T from its option map.
// name is the requested plugin name after alias resolution.
type Factory[T any] func(c *Container, name string, options any) (T, error)

// PluginManager resolves plugin names of one category to factories.
// It is immutable once built and safe for concurrent use.
type PluginManager[T any] struct {
	container *Container
	aliases   map[string]string
	factories map[string]Factory[T]
	category  string
}

func newPluginManager[T any](c *Container, category string, aliases map[string]string, factories map[string]Factory[T]) *PluginManager[T] {
	return &PluginManager[T]{
		container: c,
		category:  category,
		aliases:   maps.Clone(aliases),
		factories: maps.Clone(factories),
	}
}

// Category returns the plugin category, e.g. "handler".
func (pm *PluginManager[T]) Category() string {
	return pm.category
}

// Has reports whether name or one of its aliases resolves to a factory.
func (pm *PluginManager[T]) Has(name string) bool {
	_, ok := pm.factory(name)
	return ok
}

// Get builds the plugin registered under name.
// Unknown names fail with ErrServiceNotFound. Factory errors are returned as is.
func (pm *PluginManager[T]) Get(name string, options any) (T, error) {
	f, ok := pm.factory(name)
	if !ok {
		var zero T
		return zero, notFound(fmt.Sprintf("%s plugin %q", pm.category, name), nil)
	}
	return f(pm.container, pm.resolve(name), options)
}

// Build is Get. Plugins are never shared, so every call returns a new instance.
func (pm *PluginManager[T]) Build(name string, options any) (T, error) {
	return pm.Get(name, options)
}

// Names returns the registered plugin types in lexical order.
func (pm *PluginManager[T]) Names() []string {
	return slices.Sorted(maps.Keys(pm.factories))
}

// Aliases returns a copy of the alias table.
func (pm *PluginManager[T]) Aliases() map[string]string {
	return maps.Clone(pm.aliases)
}

func (pm *PluginManager[T]) resolve(name string) string {
	seen := 0
	for {
		target, ok := pm.aliases[name]
		if !ok || seen > len(pm.aliases) {
			return name
		}
		name = target
		seen++
	}
}

func (pm *PluginManager[T]) factory(name string) (Factory[T], bool) {
	f, ok := pm.factories[pm.resolve(name)]
	return f, ok
}
