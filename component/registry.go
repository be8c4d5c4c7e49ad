//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package component provides the registry that graph builders resolve
// COMPONENT nodes against, plus the builtin components under its
// subpackages.
package component

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/weavegraph/weavegraph/graph"
)

// Registry stores components by key and version. Registrations are
// expected at application startup; Resolve serves concurrent graph builds
// afterwards. Registry implements graph.ComponentResolver.
type Registry struct {
	mu         sync.RWMutex
	components map[string]map[string]graph.Component
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[string]map[string]graph.Component),
	}
}

// DefaultRegistry is the process-wide registry. Builtin components
// register here on import.
var DefaultRegistry = NewRegistry()

// Register adds a component under its metadata key and version.
// Re-registering the same key and version is an error.
func (r *Registry) Register(component graph.Component) error {
	if component == nil {
		return fmt.Errorf("component cannot be nil")
	}
	metadata := component.Metadata()
	if metadata.Key == "" {
		return fmt.Errorf("component key cannot be empty")
	}
	if _, err := parseVersion(metadata.Version); err != nil {
		return fmt.Errorf("component %s: %w", metadata.Key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	versions, ok := r.components[metadata.Key]
	if !ok {
		versions = make(map[string]graph.Component)
		r.components[metadata.Key] = versions
	}
	if _, exists := versions[metadata.Version]; exists {
		return fmt.Errorf("component %s version %s already registered", metadata.Key, metadata.Version)
	}
	versions[metadata.Version] = component
	return nil
}

// MustRegister registers a component and panics on failure. Intended for
// init-time registration of builtin components.
func (r *Registry) MustRegister(component graph.Component) {
	if err := r.Register(component); err != nil {
		panic(err)
	}
}

// Get returns the highest registered version of the component with key.
func (r *Registry) Get(key string) (graph.Component, error) {
	return r.Resolve(key, "")
}

// Resolve returns the component matching key and version constraint.
// An empty constraint picks the highest registered version. A constraint
// beginning with "^" picks the highest version sharing its major version
// and not below it. Anything else is an exact version match.
func (r *Registry) Resolve(key, versionConstraint string) (graph.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, ok := r.components[key]
	if !ok {
		return nil, fmt.Errorf("component %s not registered", key)
	}

	if versionConstraint != "" && !strings.HasPrefix(versionConstraint, "^") {
		component, ok := versions[versionConstraint]
		if !ok {
			return nil, fmt.Errorf("component %s has no version %s", key, versionConstraint)
		}
		return component, nil
	}

	var floor semver
	caret := strings.HasPrefix(versionConstraint, "^")
	if caret {
		parsed, err := parseConstraintVersion(strings.TrimPrefix(versionConstraint, "^"))
		if err != nil {
			return nil, fmt.Errorf("component %s: bad constraint %q: %w", key, versionConstraint, err)
		}
		floor = parsed
	}

	var best graph.Component
	var bestVersion semver
	found := false
	for version, component := range versions {
		parsed, err := parseVersion(version)
		if err != nil {
			continue
		}
		if caret && (parsed.major != floor.major || parsed.less(floor)) {
			continue
		}
		if !found || bestVersion.less(parsed) {
			best = component
			bestVersion = parsed
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("component %s has no version satisfying %q", key, versionConstraint)
	}
	return best, nil
}

// List returns the metadata of every registered component version, sorted
// by key then version for stable output.
func (r *Registry) List() []graph.ComponentMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []graph.ComponentMetadata
	for _, versions := range r.components {
		for _, component := range versions {
			all = append(all, component.Metadata())
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Key != all[j].Key {
			return all[i].Key < all[j].Key
		}
		return all[i].Version < all[j].Version
	})
	return all
}

// semver is the major.minor.patch triple components version themselves
// with. Pre-release and build suffixes are not supported.
type semver struct {
	major, minor, patch int
}

func (v semver) less(other semver) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// parseConstraintVersion parses the version part of a caret constraint.
// Constraints may omit the patch segment ("^1.0" means "^1.0.0");
// registered versions stay strict three-segment values.
func parseConstraintVersion(version string) (semver, error) {
	if strings.Count(version, ".") == 1 {
		version += ".0"
	}
	return parseVersion(version)
}

func parseVersion(version string) (semver, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return semver{}, fmt.Errorf("invalid version %q: want major.minor.patch", version)
	}
	var parsed [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return semver{}, fmt.Errorf("invalid version %q: bad segment %q", version, part)
		}
		parsed[i] = n
	}
	return semver{major: parsed[0], minor: parsed[1], patch: parsed[2]}, nil
}
