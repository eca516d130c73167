// Package retention decides which App Engine versions can be deleted while
// keeping the most recently deployed ones of every service.
package retention

import (
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/Azure/appengine-prune/pkg/core/appengine"
)

// Policy controls version selection.
type Policy struct {
	// Keep is the number of most recently deployed versions kept per service.
	// Values below 1 select nothing.
	Keep int
	// NameContains restricts selection to versions whose label contains it.
	// Empty means every version takes part.
	NameContains string
}

// Selection is the outcome of applying a Policy.
type Selection struct {
	Delete sets.Set[string]
	Keep   sets.Set[string]
	// PerService holds each service's delete candidates after labels kept by
	// any service have been removed.
	PerService map[string]sets.Set[string]
}

// SelectVersionsToDelete returns the labels to delete so that every service
// keeps its keep most recent versions.
func SelectVersionsToDelete(versions *appengine.ServiceVersions, keep int) sets.Set[string] {
	return Select(versions, Policy{Keep: keep}).Delete
}

// Select applies p to versions. A label kept for any service is never
// deleted for any service. versions is not modified.
func Select(versions *appengine.ServiceVersions, p Policy) Selection {
	sel := Selection{
		Delete:     sets.New[string](),
		Keep:       sets.New[string](),
		PerService: make(map[string]sets.Set[string]),
	}
	if p.Keep < 1 || versions == nil {
		return sel
	}

	candidates := make(map[string]sets.Set[string], versions.Len())
	for _, service := range versions.Services() {
		records := filterByName(versions.Versions(service), p.NameContains)
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].LastDeployed < records[j].LastDeployed
		})

		split := len(records) - p.Keep
		if split < 0 {
			split = 0
		}
		toDelete := sets.New[string]()
		for _, r := range records[:split] {
			toDelete.Insert(r.Label)
		}
		for _, r := range records[split:] {
			sel.Keep.Insert(r.Label)
		}
		candidates[service] = toDelete
	}

	for service, toDelete := range candidates {
		remaining := toDelete.Difference(sel.Keep)
		sel.PerService[service] = remaining
		sel.Delete = sel.Delete.Union(remaining)
	}
	return sel
}

func filterByName(records []appengine.VersionRecord, substr string) []appengine.VersionRecord {
	if substr == "" {
		return records
	}
	filtered := records[:0]
	for _, r := range records {
		if strings.Contains(r.Label, substr) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
