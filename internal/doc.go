// Package internal provides the container and plugin factories behind the
// slogfactory package.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/slogfactory" instead, which re-exports the public API.
//
// # Core Types
//
//   - Container: builds and caches loggers and service clients by name
//   - PluginManager: resolves a plugin type or alias to its Factory
//   - Factory: builds one plugin from an untyped option map
//   - Config: the declarative description decoded from YAML
//
// # Resolution
//
// A logger config is turned into a *logger.Logger by newLogger. Handler
// entries are resolved by getHandler, which attaches the optional formatter
// and processors of the entry. Wrapper handlers resolve their child through
// childHandler and groups through getHandlers.
//
// Two error sentinels classify every failure:
//
//   - ErrServiceNotFound: an unknown plugin type or service name
//   - ErrServiceNotCreated: invalid options or a failing constructor
//
// Handler and processor entries that are not found are skipped with a
// warning. Everything else fails the build of the enclosing service.
//
// # Options
//
// Option maps come from yaml.v3 or from Go code. Scalars are read with
// spf13/cast so "10", 10 and 10.0 are equivalent. Struct shaped options
// are decoded with mapstructure using weak typing and hooks for durations,
// levels, locations and file modes.
package internal
