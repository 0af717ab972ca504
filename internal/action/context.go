package action

import "github.com/ekam-build/ekam/internal/artifact"
import "github.com/ekam-build/ekam/internal/tag"

// Context is the per-run handle an Action uses to ask for inputs,
// declare outputs, provide tags, install artifacts, emit log text, and
// report pass/fail. It is only valid while the owning driver is
// RUNNING; every implementation MUST reject calls made after that
// (see engine.ActionDriver for the precondition enforcement).
type Context interface {
	// FindProvider resolves tag t to its preferred artifact, or
	// reports not-found with ok=false. The lookup is recorded in the
	// DependencyTable regardless of outcome.
	FindProvider(t tag.Tag) (art artifact.Artifact, ok bool)

	// FindInput is FindProvider(tag.FromFile(path)), resolved relative
	// to this driver's own scratch directory.
	FindInput(path string) (art artifact.Artifact, ok bool)

	// Provide adds (or extends the tag set of) a provision owned by
	// this driver. The provision is not visible to other drivers until
	// this driver's return procedure runs.
	Provide(art artifact.Artifact, tags ...tag.Tag)

	// Install calls Provide with the synthesized bin:<name> or
	// lib:<name> tag and records an install directive that links art
	// into the project's bin/ or lib/ directory on success.
	Install(art artifact.Artifact, loc InstallLocation, name string)

	// NewOutput creates a fresh artifact under this driver's scratch
	// subtree at path, tags it file:*, and returns it.
	NewOutput(path string) artifact.Artifact

	// Log appends text to the dashboard task output buffer for this
	// driver.
	Log(text string)

	// AddActionType registers factory so it becomes visible once this
	// driver returns, triggering a rescan over every existing
	// provision.
	AddActionType(factory Factory)

	// Passed transitions the driver to PASSED. A second call, or a
	// call after Failed, is ignored.
	Passed()

	// Failed transitions the driver to FAILED with msg appended to its
	// log. A second call is ignored; calling Failed after Passed is a
	// programming error.
	Failed(msg string)

	// Done transitions the driver to DONE (success without an explicit
	// pass/fail call, e.g. when an ActionFunc returns nil).
	Done()
}
