package engine

import (
	"github.com/ekam-build/ekam/internal/dashboard"
	"github.com/ekam-build/ekam/internal/ids"
	"github.com/ekam-build/ekam/internal/provision"
	"github.com/ekam-build/ekam/internal/tag"
)

// resetDependentsOf resets every driver that, as of its last lookup,
// resolved some tag to p, used when p itself disappears (a source
// file is removed) so every driver depending on it reruns.
func (e *Engine) resetDependentsOf(p *provision.Provision) {
	e.mu.Lock()
	rows := e.g.deps.RowsForProvision(p.ID)
	e.mu.Unlock()

	visited := map[ids.DriverID]bool{}
	for _, row := range rows {
		e.resetDriver(row.Driver, visited)
	}
}

// invalidateRowsForTags resets every driver that previously looked up
// one of tags and did not resolve it to p, either because no provider
// existed yet, or because a different provision was preferred at the
// time. This is how a newly-registered provision reaches the drivers
// whose earlier "not found" or now-stale lookup it affects, per the
// DependencyTable's "missing provider" case.
func (e *Engine) invalidateRowsForTags(p *provision.Provision, tags []tag.Tag) {
	visited := map[ids.DriverID]bool{}
	for _, t := range tags {
		e.mu.Lock()
		rows := e.g.deps.RowsForTag(t)
		e.mu.Unlock()
		for _, row := range rows {
			if row.ChosenID == p.ID {
				continue
			}
			e.resetDriver(row.Driver, visited)
		}
	}
}

// resetDriver implements the invalidation cascade: it cancels or
// requeues driver as PENDING at the tail of the scheduler, drops its
// owned provisions/installs and recorded dependency rows, unregisters
// any factory it added via AddActionType (resetting, in turn, every
// action that factory created), and recurses into every driver that
// depended on one of its provisions. visited guards against revisiting
// a driver already reset in this cascade.
func (e *Engine) resetDriver(id ids.DriverID, visited map[ids.DriverID]bool) {
	if id == ids.NoDriver || visited[id] {
		return
	}
	visited[id] = true

	e.mu.Lock()
	d, ok := e.drivers[id]
	e.mu.Unlock()
	if !ok {
		return
	}

	d.mu.Lock()
	wasRunning := d.state == Running
	handle := d.handle
	owned := append([]*provision.Provision{}, d.owned...)
	d.mu.Unlock()

	if wasRunning && handle != nil {
		handle.Cancel()
	}

	var dependentDrivers []ids.DriverID
	for _, p := range owned {
		e.g.tags.Remove(p)
		e.mu.Lock()
		rows := e.g.deps.RowsForProvision(p.ID)
		e.mu.Unlock()
		for _, row := range rows {
			dependentDrivers = append(dependentDrivers, row.Driver)
		}
	}

	e.mu.Lock()
	ownedFactories := e.g.triggers.FactoriesOwnedBy(id)
	var createdByOwnedFactories []ids.DriverID
	for _, fid := range ownedFactories {
		createdByOwnedFactories = append(createdByOwnedFactories, e.actionsByFactory[fid]...)
		e.g.triggers.Unregister(fid)
		delete(e.actionsByFactory, fid)
	}
	e.g.deps.EraseDriver(id)
	e.mu.Unlock()

	if d.task != nil {
		d.task.SetState(dashboard.StatePending)
	}

	d.mu.Lock()
	d.state = Pending
	d.handle = nil
	d.owned = nil
	d.installs = nil
	d.pendingFactories = nil
	d.log = nil
	d.passedCalled = false
	d.failedCalled = false
	d.doneCalled = false
	d.mu.Unlock()

	if wasRunning {
		e.sch.NotifyDone(d)
	} else {
		e.sch.Cancel(d)
	}
	e.sch.Requeue(d)

	for _, dep := range dependentDrivers {
		e.resetDriver(dep, visited)
	}
	for _, created := range createdByOwnedFactories {
		e.resetDriver(created, visited)
	}
}
