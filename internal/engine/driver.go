package engine

import (
	"fmt"
	"sync"

	"github.com/ekam-build/ekam/internal/action"
	"github.com/ekam-build/ekam/internal/artifact"
	"github.com/ekam-build/ekam/internal/dashboard"
	"github.com/ekam-build/ekam/internal/ekamerr"
	"github.com/ekam-build/ekam/internal/ids"
	"github.com/ekam-build/ekam/internal/provision"
	"github.com/ekam-build/ekam/internal/tag"
)

// State is one point in the ActionDriver lifecycle:
// PENDING -> RUNNING -> {DONE, PASSED, FAILED}.
type State int

const (
	Pending State = iota
	Running
	Done
	Passed
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Running:
		return "RUNNING"
	case Done:
		return "DONE"
	case Passed:
		return "PASSED"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

type installDirective struct {
	prov *provision.Provision
	loc  action.InstallLocation
	name string
}

type addedFactory struct {
	id      ids.FactoryID
	factory action.Factory
}

// ActionDriver is the state machine for one rule invocation, bound to a
// specific source file.
type ActionDriver struct {
	id  ids.DriverID
	eng *Engine
	act action.Action

	// sourceArt is the driver's triggering source artifact; its
	// canonical name is the consumer path used for preferred-provider
	// resolution.
	sourceArt   artifact.Artifact
	scratchRoot artifact.Artifact

	mu      sync.Mutex
	state   State
	handle  action.Handle
	owned   []*provision.Provision
	installs []installDirective
	pendingFactories []addedFactory
	log     []string
	task    dashboard.Task

	passedCalled bool
	failedCalled bool
	doneCalled   bool
}

// ID returns the driver's stable handle.
func (d *ActionDriver) ID() ids.DriverID { return d.id }

// State returns the driver's current lifecycle state.
func (d *ActionDriver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// SourceName returns the canonical name of the artifact that triggered
// this driver, for build summaries and dashboard labels.
func (d *ActionDriver) SourceName() string {
	return d.sourceArt.CanonicalName()
}

// Messages returns a copy of the text this driver has logged, most
// recently a Failed() call's message, for the CLI's end-of-round
// failure summary.
func (d *ActionDriver) Messages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.log))
	copy(out, d.log)
	return out
}

// Start implements scheduler.Startable: it transitions PENDING->RUNNING
// and invokes the underlying Action. Start must not block; Action.Start
// is required to return promptly and report completion asynchronously
// through ActionDriver's Context methods or the returned Handle.
func (d *ActionDriver) Start() {
	d.mu.Lock()
	if d.state != Pending {
		d.mu.Unlock()
		return
	}
	d.state = Running
	d.mu.Unlock()

	if d.task != nil {
		d.task.SetState(dashboard.StateRunning)
	}

	handle, err := d.safeStart()
	if err != nil {
		d.Failed(err.Error())
		return
	}
	d.mu.Lock()
	d.handle = handle
	d.mu.Unlock()

	if handle != nil {
		go d.awaitHandle(handle)
	}
}

// safeStart wraps act.Start in a recover guard: an uncaught panic from
// a rule plug-in becomes a FAILED transition carrying the panic text
// into the log, rather than taking the whole engine down.
func (d *ActionDriver) safeStart() (handle action.Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in action: %v", r)
		}
	}()
	return d.act.Start(d)
}

func (d *ActionDriver) awaitHandle(handle action.Handle) {
	err, ok := <-handle.Done()
	if !ok {
		return
	}
	if err != nil {
		d.Failed(err.Error())
		return
	}
	d.mu.Lock()
	alreadyTerminal := d.passedCalled || d.failedCalled || d.doneCalled
	d.mu.Unlock()
	if !alreadyTerminal {
		d.Done()
	}
}

func (d *ActionDriver) requirePrecondition(op string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Running {
		d.eng.logger().Warnf("ignoring %s on driver %s in state %s", op, d.id, d.state)
		return false
	}
	return true
}

// FindProvider implements action.Context.
func (d *ActionDriver) FindProvider(t tag.Tag) (artifact.Artifact, bool) {
	if !d.requirePrecondition("FindProvider") {
		return artifact.Artifact{}, false
	}
	return d.eng.resolveForDriver(d.id, t, d.sourceArt.CanonicalName())
}

// FindInput implements action.Context.
func (d *ActionDriver) FindInput(path string) (artifact.Artifact, bool) {
	rel := d.scratchRoot.Resolve(path).CanonicalName()
	return d.FindProvider(tag.FromFile(rel))
}

// Provide implements action.Context.
func (d *ActionDriver) Provide(art artifact.Artifact, tags ...tag.Tag) {
	if !d.requirePrecondition("Provide") {
		return
	}
	d.eng.mu.Lock()
	pid := ids.ProvisionID(d.eng.g.provisionAlloc.Next())
	d.eng.mu.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.owned {
		if existing.Art.Identical(art) {
			for _, t := range tags {
				existing.AddTag(t)
			}
			return
		}
	}
	p := &provision.Provision{
		ID:      pid,
		Creator: d.id,
		Art:     art,
		Tags:    append([]tag.Tag{}, tags...),
	}
	d.owned = append(d.owned, p)
}

// Install implements action.Context.
func (d *ActionDriver) Install(art artifact.Artifact, loc action.InstallLocation, name string) {
	if !d.requirePrecondition("Install") {
		return
	}
	synthetic := tag.FromName(installTagName(loc, name))
	d.Provide(art, synthetic)

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, owned := range d.owned {
		if owned.Art.Identical(art) {
			d.installs = append(d.installs, installDirective{prov: owned, loc: loc, name: name})
			return
		}
	}
}

func installTagName(loc action.InstallLocation, name string) string {
	if loc == action.LIB {
		return "lib:" + name
	}
	return "bin:" + name
}

// NewOutput implements action.Context.
func (d *ActionDriver) NewOutput(path string) artifact.Artifact {
	art := d.scratchRoot.Resolve(path)
	d.Provide(art, art.Tag())
	return art
}

// Log implements action.Context.
func (d *ActionDriver) Log(text string) {
	if !d.requirePrecondition("Log") {
		return
	}
	d.mu.Lock()
	d.log = append(d.log, text)
	task := d.task
	d.mu.Unlock()
	if task != nil {
		task.AddOutput(text)
	}
}

// AddActionType implements action.Context.
func (d *ActionDriver) AddActionType(factory action.Factory) {
	if !d.requirePrecondition("AddActionType") {
		return
	}
	d.eng.mu.Lock()
	id := ids.FactoryID(d.eng.g.factoryAlloc.Next())
	d.eng.mu.Unlock()
	d.mu.Lock()
	d.pendingFactories = append(d.pendingFactories, addedFactory{id: id, factory: factory})
	d.mu.Unlock()
}

// Passed implements action.Context.
func (d *ActionDriver) Passed() {
	d.mu.Lock()
	if d.state != Running || d.failedCalled || d.passedCalled {
		d.mu.Unlock()
		return
	}
	d.passedCalled = true
	d.state = Passed
	d.mu.Unlock()
	go d.eng.processReturn(d)
}

// Failed implements action.Context. A Failed call after Passed is a
// fatal programming error; it panics rather than silently corrupting
// driver state, treating an "impossible" state transition as a bug to
// surface loudly rather than paper over.
func (d *ActionDriver) Failed(msg string) {
	d.mu.Lock()
	if d.passedCalled || d.doneCalled {
		d.mu.Unlock()
		panic(ekamerr.NewConsistencyError("driver %s: Failed() called after Passed()/Done()", d.id))
	}
	if d.failedCalled {
		d.mu.Unlock()
		return
	}
	d.failedCalled = true
	d.state = Failed
	d.log = append(d.log, msg)
	task := d.task
	d.mu.Unlock()
	if task != nil {
		task.AddOutput(msg)
	}
	go d.eng.processReturn(d)
}

// Done implements action.Context.
func (d *ActionDriver) Done() {
	d.mu.Lock()
	if d.state != Running || d.passedCalled || d.failedCalled || d.doneCalled {
		d.mu.Unlock()
		return
	}
	d.doneCalled = true
	d.state = Done
	d.mu.Unlock()
	go d.eng.processReturn(d)
}
