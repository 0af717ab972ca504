package engine

import (
	"sync"

	"github.com/ekam-build/ekam/internal/action"
	"github.com/ekam-build/ekam/internal/artifact"
	"github.com/ekam-build/ekam/internal/dashboard"
	"github.com/ekam-build/ekam/internal/ids"
	"github.com/ekam-build/ekam/internal/logger"
	"github.com/ekam-build/ekam/internal/provision"
	"github.com/ekam-build/ekam/internal/scheduler"
	"github.com/ekam-build/ekam/internal/tag"
)

// Engine is the top-level facade of the build: it owns the graph
// tables, the scheduler, and every ActionDriver, and exposes the four
// operations a caller (the CLI, the watcher, the RPC server) drives the
// build through.
type Engine struct {
	mu sync.Mutex

	g    *graph
	sch  *scheduler.Scheduler
	log  logger.Logger
	dash dashboard.Dashboard

	srcRoot     artifact.Artifact
	scratchRoot artifact.Artifact
	binRoot     artifact.Artifact
	libRoot     artifact.Artifact

	driverAlloc *ids.Allocator
	drivers     map[ids.DriverID]*ActionDriver

	// actionsByFactory indexes every driver a given factory created, so
	// resetting the driver that registered the factory can reset every
	// action it spawned.
	actionsByFactory map[ids.FactoryID][]ids.DriverID
	factoryOf        map[ids.DriverID]ids.FactoryID

	sourceProvisions map[string]*provision.Provision // canonical path -> Engine-owned provision

	builtinFactoryID ids.FactoryID
}

// Roots names the four top-level directories a build runs against.
type Roots struct {
	Src   string
	Tmp   string
	Bin   string
	Lib   string
}

// New constructs an Engine with the given concurrency cap, roots,
// logger, and dashboard. The built-in extract-type factory is
// registered automatically.
func New(maxConcurrent int, roots Roots, log logger.Logger, dash dashboard.Dashboard) *Engine {
	e := &Engine{
		g:                newGraph(),
		sch:              scheduler.New(maxConcurrent),
		log:              log,
		dash:             dash,
		srcRoot:          artifact.New(roots.Src, ".", true),
		scratchRoot:      artifact.New(roots.Tmp, ".", false),
		binRoot:          artifact.New(roots.Bin, ".", false),
		libRoot:          artifact.New(roots.Lib, ".", false),
		driverAlloc:      ids.NewAllocator(),
		drivers:          make(map[ids.DriverID]*ActionDriver),
		actionsByFactory: make(map[ids.FactoryID][]ids.DriverID),
		factoryOf:        make(map[ids.DriverID]ids.FactoryID),
		sourceProvisions: make(map[string]*provision.Provision),
	}
	e.builtinFactoryID = e.addFactory(newExtractTypeFactory(), ids.NoDriver)
	return e
}

func (e *Engine) logger() logger.Logger { return e.log }

// Idle reports whether the build has reached fixpoint: no driver is
// PENDING or RUNNING.
func (e *Engine) Idle() bool {
	return e.sch.Idle()
}

// FailedDrivers returns every driver currently in the FAILED state, for
// computing the CLI's exit code and for summarizing a build round.
func (e *Engine) FailedDrivers() []*ActionDriver {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*ActionDriver
	for _, d := range e.drivers {
		if d.State() == Failed {
			out = append(out, d)
		}
	}
	return out
}

// AddActionFactory registers factory, keyed by every tag it enumerates,
// then rescans every existing provision against it.
func (e *Engine) AddActionFactory(factory action.Factory) {
	e.addFactory(factory, ids.NoDriver)
}

// addFactory registers factory under a fresh FactoryID, owned by owner
// (ids.NoDriver for a factory registered through AddActionFactory, or
// the registering driver's ID for one added dynamically via
// ActionContext.AddActionType), then rescans every existing provision
// against it.
func (e *Engine) addFactory(factory action.Factory, owner ids.DriverID) ids.FactoryID {
	e.mu.Lock()
	id := ids.FactoryID(e.g.factoryAlloc.Next())
	e.mu.Unlock()
	e.registerFactory(id, factory, owner)
	return id
}

// registerFactory records factory under the given, already-allocated
// id, and rescans every existing provision against it. Used both by
// addFactory (fresh id) and by the return procedure for factories added
// via ActionContext.AddActionType, whose id is allocated up front so
// the driver can reference it before it returns.
func (e *Engine) registerFactory(id ids.FactoryID, factory action.Factory, owner ids.DriverID) {
	e.mu.Lock()
	e.g.triggers.Register(id, factory, owner)
	e.mu.Unlock()
	e.rescanForFactory(id, factory)
}

// AddSourceFile registers a new source artifact, tagging it with the
// built-in file:*, filetype:<ext>, and canonical:<name> tags (via the
// extract-type factory) and firing any matching triggers.
func (e *Engine) AddSourceFile(relPath string) {
	art := e.srcRoot.Resolve(relPath)
	e.mu.Lock()
	if _, exists := e.sourceProvisions[art.CanonicalName()]; exists {
		e.mu.Unlock()
		return
	}
	p := &provision.Provision{
		ID:      ids.ProvisionID(e.g.provisionAlloc.Next()),
		Creator: ids.NoDriver,
		Art:     art,
		Tags:    []tag.Tag{art.Tag(), tag.FromName("file:*")},
	}
	e.sourceProvisions[art.CanonicalName()] = p
	e.mu.Unlock()

	e.g.tags.Insert(p)
	e.invalidateRowsForTags(p, p.Tags)
	e.fireTriggers(p)
}

// RemoveSourceFile unregisters a source artifact's provision and
// cascades a reset to every driver that depended on it.
func (e *Engine) RemoveSourceFile(relPath string) {
	art := e.srcRoot.Resolve(relPath)
	e.mu.Lock()
	p, ok := e.sourceProvisions[art.CanonicalName()]
	if ok {
		delete(e.sourceProvisions, art.CanonicalName())
	}
	e.mu.Unlock()
	if !ok {
		return
	}
	e.g.tags.Remove(p)
	e.resetDependentsOf(p)
}

// RescanForNewFactory registers factory exactly like AddActionFactory.
// It is the entry point a dynamically-loaded rule plug-in uses once
// it has been discovered after the engine has already started, kept
// distinct from AddActionFactory so callers can express "a factory
// just became available" separately from "bootstrap registration" even
// though both paths converge on the same registration+rescan logic.
func (e *Engine) RescanForNewFactory(factory action.Factory) {
	e.addFactory(factory, ids.NoDriver)
}

func (e *Engine) rescanForFactory(id ids.FactoryID, factory action.Factory) {
	for _, t := range factory.Tags() {
		for _, p := range e.g.tags.Candidates(t) {
			e.tryTrigger(id, factory, t, p)
		}
	}
}

func (e *Engine) fireTriggers(p *provision.Provision) {
	for _, t := range p.Tags {
		for _, row := range e.g.triggers.RowsForTag(t) {
			f, ok := e.g.triggers.Factory(row.FactoryID)
			if !ok {
				continue
			}
			e.tryTrigger(row.FactoryID, f.(action.Factory), t, p)
		}
	}
}

func (e *Engine) tryTrigger(factoryID ids.FactoryID, factory action.Factory, t tag.Tag, p *provision.Provision) {
	act, ok := factory.TryMakeAction(t, p.Art)
	if !ok || act == nil {
		return
	}
	e.enqueueAction(act, p.Art, factoryID)
}

func (e *Engine) enqueueAction(act action.Action, sourceArt artifact.Artifact, factoryID ids.FactoryID) *ActionDriver {
	e.mu.Lock()
	id := ids.DriverID(e.driverAlloc.Next())
	scratch := e.scratchRoot.Resolve(sourceArt.CanonicalName())
	d := &ActionDriver{
		id:          id,
		eng:         e,
		act:         act,
		sourceArt:   sourceArt,
		scratchRoot: scratch,
		state:       Pending,
	}
	e.drivers[id] = d
	e.factoryOf[id] = factoryID
	e.actionsByFactory[factoryID] = append(e.actionsByFactory[factoryID], id)
	e.mu.Unlock()

	if e.dash != nil {
		silent := factoryID == e.builtinFactoryID
		d.task = e.dash.BeginTask("build", sourceArt.CanonicalName(), silent)
	}

	e.sch.Enqueue(d)
	return d
}

// resolveForDriver implements ActionContext.findProvider's dependency
// recording and cycle guard (see graph.wouldCycle).
func (e *Engine) resolveForDriver(consumer ids.DriverID, t tag.Tag, consumerCanonicalName string) (artifact.Artifact, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, found := e.g.tags.Preferred(t, consumerCanonicalName)
	if !found {
		e.g.deps.Record(t, consumer, nil)
		return artifact.Artifact{}, false
	}
	if e.g.wouldCycle(consumer, p.Creator) {
		e.log.Warnf("refusing dependency: driver %s -> %s on tag %s would cycle", consumer, p.Creator, t)
		e.g.deps.Record(t, consumer, nil)
		return artifact.Artifact{}, false
	}
	e.g.deps.Record(t, consumer, p)
	return p.Art, true
}
