package model

import (
	"fmt"
	"strings"
)

// Resource describes a hierarchical record collection exposed by the API
type Resource struct {
	Name       string `json:"name"`        // Collection name (e.g., "categories")
	Path       string `json:"path"`        // API path segment (e.g., "categories")
	CoreModel  string `json:"core_model"`  // Model name used when linking (e.g., "category")
	PluginType string `json:"plugin_type"` // Plugin record collection to link against (e.g., "categories")
}

// Known hierarchical resources. Payees are stored as merchants in the backend
// but the API exposes them under /payees/.
var (
	ResourceCategories = Resource{
		Name:       "categories",
		Path:       "categories",
		CoreModel:  "category",
		PluginType: "categories",
	}
	ResourcePayees = Resource{
		Name:       "payees",
		Path:       "payees",
		CoreModel:  "payee",
		PluginType: "payees",
	}
)

var knownResources = map[string]Resource{
	ResourceCategories.Name: ResourceCategories,
	ResourcePayees.Name:     ResourcePayees,
}

// LookupResource returns the resource registered under name
func LookupResource(name string) (Resource, error) {
	r, ok := knownResources[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Resource{}, fmt.Errorf("unknown resource %q", name)
	}
	return r, nil
}

// ParseResources resolves a list of resource names, rejecting unknown ones
func ParseResources(names []string) ([]Resource, error) {
	resources := make([]Resource, 0, len(names))
	seen := make(map[string]bool)
	for _, name := range names {
		r, err := LookupResource(name)
		if err != nil {
			return nil, err
		}
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		resources = append(resources, r)
	}
	return resources, nil
}
