// Package action defines the interfaces a rule plug-in implements and
// the ActionContext the engine hands it. The core never knows what a
// rule does, only the Action/ActionFactory contract it runs against.
package action

import (
	"github.com/ekam-build/ekam/internal/artifact"
	"github.com/ekam-build/ekam/internal/tag"
)

// InstallLocation is where ActionContext.Install places a finished
// artifact on success.
type InstallLocation int

const (
	// BIN installs into the project's bin/ directory.
	BIN InstallLocation = iota
	// LIB installs into the project's lib/ directory.
	LIB
)

// Handle represents the ongoing asynchronous work an Action's Start
// returns. The driver holds it until a pass/fail call or the handle's
// own completion signal fires; resetting the driver must Cancel it.
type Handle interface {
	// Cancel aborts the in-flight operation. After Cancel returns, the
	// handle must deliver no further completion signal.
	Cancel()
	// Done returns a channel that is closed when the handle's work
	// finishes on its own, carrying the terminal error, if any.
	Done() <-chan error
}

// Action is one unit of build work, produced by an ActionFactory for a
// specific triggering provision.
type Action interface {
	// Start begins the action's work. The returned Handle's completion
	// (or a direct Passed/Failed/done call on ctx) ends the RUNNING
	// state. Start itself must not block.
	Start(ctx Context) (Handle, error)
}

// ActionFunc adapts a plain function to the Action interface for
// synchronous, in-process actions (the engine's own built-in factories
// use this; rule plug-ins that spawn real subprocesses implement Action
// directly instead).
type ActionFunc func(ctx Context) error

// Start implements Action by running fn synchronously and reporting its
// result through ctx, then returning an already-complete Handle.
func (f ActionFunc) Start(ctx Context) (Handle, error) {
	done := make(chan error, 1)
	err := f(ctx)
	if err != nil {
		ctx.Failed(err.Error())
	} else {
		ctx.Done()
	}
	done <- err
	close(done)
	return completedHandle{done: done}, nil
}

type completedHandle struct {
	done chan error
}

func (completedHandle) Cancel() {}
func (h completedHandle) Done() <-chan error { return h.done }

// Factory enumerates the tags it wants to be notified about and
// attempts to build an Action each time a provision carrying one of
// those tags appears.
type Factory interface {
	// Tags lists every tag this factory triggers on.
	Tags() []tag.Tag
	// TryMakeAction is called once per newly registered provision
	// carrying one of Tags(). Returning ok=false declines to act on
	// this particular artifact (e.g. a factory registered on
	// "filetype:.cpp" that only wants files under a specific
	// subdirectory).
	TryMakeAction(t tag.Tag, art artifact.Artifact) (act Action, ok bool)
}

// FactoryFunc adapts a (tags, try) pair to Factory without a named
// type, for small built-in factories.
type FactoryFunc struct {
	TagList []tag.Tag
	Try     func(t tag.Tag, art artifact.Artifact) (Action, bool)
}

func (f FactoryFunc) Tags() []tag.Tag { return f.TagList }

func (f FactoryFunc) TryMakeAction(t tag.Tag, art artifact.Artifact) (Action, bool) {
	return f.Try(t, art)
}
