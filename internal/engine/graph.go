package engine

import (
	"github.com/ekam-build/ekam/internal/depgraph"
	"github.com/ekam-build/ekam/internal/ids"
	"github.com/ekam-build/ekam/internal/provision"
)

// graph bundles the TagIndex of live provisions, the DependencyTable
// of recorded lookups, and the TriggerRegistry of factories waiting on
// tags. It also tracks, for each driver, the set of drivers it
// transitively depended on at completion time: the
// frozen transitive-dependency snapshot used to keep a driver from
// depending on its own output, directly or through a cycle.
type graph struct {
	tags     *provision.TagIndex
	deps     *depgraph.DependencyTable
	triggers *depgraph.TriggerRegistry

	provisionAlloc *ids.Allocator
	factoryAlloc   *ids.Allocator

	// dependsOn[d] is the set of drivers d transitively depended on as
	// of its most recent completed run (frozen at return time).
	dependsOn map[ids.DriverID]map[ids.DriverID]bool
}

func newGraph() *graph {
	return &graph{
		tags:           provision.NewTagIndex(),
		deps:           depgraph.NewDependencyTable(),
		triggers:       depgraph.NewTriggerRegistry(),
		provisionAlloc: ids.NewAllocator(),
		factoryAlloc:   ids.NewAllocator(),
		dependsOn:      make(map[ids.DriverID]map[ids.DriverID]bool),
	}
}

// transitiveDependencies returns the frozen set of drivers d depends on,
// as computed the last time d completed. A driver that has never
// completed has an empty set.
func (g *graph) transitiveDependencies(d ids.DriverID) map[ids.DriverID]bool {
	return g.dependsOn[d]
}

// wouldCycle reports whether recording "consumer depends on creator"
// would close a cycle: it does if creator is consumer itself, or if
// creator's own frozen transitive dependencies already include
// consumer (creator depends on consumer, so consumer depending on
// creator too would loop). This is the enforcement point for the
// no-self-dependency invariant.
func (g *graph) wouldCycle(consumer, creator ids.DriverID) bool {
	if creator == ids.NoDriver {
		return false // Engine-owned source provisions never cycle.
	}
	if creator == consumer {
		return true
	}
	return g.transitiveDependencies(creator)[consumer]
}

// freezeTransitiveDependencies computes and stores driver's transitive
// dependency set from its just-recorded DependencyTable rows, to be
// consulted by wouldCycle for future lookups made by other drivers.
func (g *graph) freezeTransitiveDependencies(driver ids.DriverID) {
	direct := map[ids.DriverID]bool{}
	for _, row := range g.deps.RowsForDriver(driver) {
		if row.Chosen != nil && row.Chosen.Creator != ids.NoDriver {
			direct[row.Chosen.Creator] = true
		}
	}
	closure := map[ids.DriverID]bool{}
	for dep := range direct {
		closure[dep] = true
		for upstream := range g.transitiveDependencies(dep) {
			closure[upstream] = true
		}
	}
	g.dependsOn[driver] = closure
}
