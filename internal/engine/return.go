package engine

import (
	"github.com/ekam-build/ekam/internal/action"
	"github.com/ekam-build/ekam/internal/artifact"
	"github.com/ekam-build/ekam/internal/dashboard"
	"github.com/ekam-build/ekam/internal/ids"
	"github.com/ekam-build/ekam/internal/provision"
)

// processReturn runs the return procedure once a driver has reached a
// terminal state: it frees the driver's scheduler slot, and for a
// successful run, freezes and registers the driver's owned provisions,
// fires any triggers they satisfy, performs install directives, and
// registers factories added via AddActionType. It is always invoked
// from a goroutine spawned by Passed/Failed/Done, never synchronously
// from the call that reached the terminal state, so a reset cascade or
// return callback never runs on an action's own call stack.
func (e *Engine) processReturn(d *ActionDriver) {
	e.sch.NotifyDone(d)

	d.mu.Lock()
	state := d.state
	owned := append([]*provision.Provision{}, d.owned...)
	installs := append([]installDirective{}, d.installs...)
	pending := append([]addedFactory{}, d.pendingFactories...)
	task := d.task
	d.mu.Unlock()

	if task != nil {
		task.SetState(dashboardStateFor(state))
	}

	if state == Failed {
		e.log.Warnf("driver %s failed: %s", d.id, d.sourceArt.CanonicalName())
		return
	}

	live := e.freezeAndRegister(d, owned)
	for _, p := range live {
		e.fireTriggers(p)
	}

	for _, inst := range installs {
		e.performInstall(d, inst)
	}

	for _, af := range pending {
		e.registerPendingFactory(d.id, af)
	}
}

func dashboardStateFor(s State) dashboard.State {
	switch s {
	case Passed:
		return dashboard.StatePassed
	case Failed:
		return dashboard.StateFailed
	case Done:
		return dashboard.StateDone
	default:
		return dashboard.StateBlocked
	}
}

// freezeAndRegister drops any owned provision whose artifact vanished
// before return, hashes the content of the survivors, freezes the
// driver's transitive-dependency closure for future wouldCycle checks,
// and makes the survivors visible through the TagIndex.
func (e *Engine) freezeAndRegister(d *ActionDriver, owned []*provision.Provision) []*provision.Provision {
	var live []*provision.Provision
	for _, p := range owned {
		if !p.Art.Exists() {
			continue
		}
		h, err := p.Art.Hash()
		if err != nil {
			e.log.Warnf("driver %s: hashing %s: %v", d.id, p.Art.CanonicalName(), err)
			continue
		}
		p.Hash = h
		live = append(live, p)
	}

	e.mu.Lock()
	e.g.freezeTransitiveDependencies(d.id)
	e.mu.Unlock()

	for _, p := range live {
		e.g.tags.Insert(p)
		e.invalidateRowsForTags(p, p.Tags)
	}
	return live
}

// performInstall hard-links an installed provision's artifact into the
// project's bin/ or lib/ tree under its declared name.
func (e *Engine) performInstall(d *ActionDriver, inst installDirective) {
	var root artifact.Artifact
	if inst.loc == action.LIB {
		root = e.libRoot
	} else {
		root = e.binRoot
	}
	dst := root.Resolve(inst.name)
	if err := inst.prov.Art.Link(dst); err != nil {
		e.log.Warnf("driver %s: installing %s: %v", d.id, inst.name, err)
	}
}

// registerPendingFactory makes a factory an action added via
// ActionContext.AddActionType visible, and triggers its rescan, only
// once the registering driver has returned.
func (e *Engine) registerPendingFactory(owner ids.DriverID, af addedFactory) {
	e.registerFactory(af.id, af.factory, owner)
}
