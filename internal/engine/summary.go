package engine

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Summary aggregates every currently FAILED driver's messages into a
// single error, or nil if the build round reached fixpoint clean. The
// CLI uses this to decide its exit code: zero iff the most recent
// build reached fixpoint with no FAILED drivers.
func (e *Engine) Summary() error {
	var result *multierror.Error
	for _, d := range e.FailedDrivers() {
		for _, msg := range d.Messages() {
			result = multierror.Append(result, fmt.Errorf("%s: %s", d.SourceName(), msg))
		}
		if len(d.Messages()) == 0 {
			result = multierror.Append(result, fmt.Errorf("%s: failed", d.SourceName()))
		}
	}
	return result.ErrorOrNil()
}
