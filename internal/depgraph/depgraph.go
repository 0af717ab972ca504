// Package depgraph implements DependencyTable and TriggerRegistry, the
// two relational tables used for invalidation and for dispatching new
// provisions to the ActionFactories waiting on them.
package depgraph

import (
	"github.com/ekam-build/ekam/internal/ids"
	"github.com/ekam-build/ekam/internal/provision"
	"github.com/ekam-build/ekam/internal/tag"
)

// DependencyRow records that driver looked up tag and, at that moment,
// resolved it to chosen (or to nil, if no provider existed yet).
type DependencyRow struct {
	Tag      tag.Tag
	Driver   ids.DriverID
	Chosen   *provision.Provision
	ChosenID ids.ProvisionID // zero means "no provision chosen"
}

// DependencyTable is the set of rows (tag, driver, chosen-provision)
// recorded for every lookup a driver makes. It supports the two
// invalidation-relevant queries: "which drivers looked up this tag"
// and "erase every row for this driver".
type DependencyTable struct {
	rows []DependencyRow
}

// NewDependencyTable returns an empty table.
func NewDependencyTable() *DependencyTable {
	return &DependencyTable{}
}

// Record appends a dependency row. chosen may be nil to record a
// not-found lookup; later, if a provision carrying tag appears, the
// driver must still be considered a candidate for reset.
func (t *DependencyTable) Record(tg tag.Tag, driver ids.DriverID, chosen *provision.Provision) {
	row := DependencyRow{Tag: tg, Driver: driver}
	if chosen != nil {
		row.Chosen = chosen
		row.ChosenID = chosen.ID
	}
	t.rows = append(t.rows, row)
}

// RowsForDriver returns every row recorded by driver.
func (t *DependencyTable) RowsForDriver(driver ids.DriverID) []DependencyRow {
	var out []DependencyRow
	for _, r := range t.rows {
		if r.Driver == driver {
			out = append(out, r)
		}
	}
	return out
}

// RowsForTag returns every row whose lookup was against tg, regardless
// of which driver made it or what it resolved to. Used by the reset
// cascade to find drivers that depended on a tag whose resolution may
// have changed.
func (t *DependencyTable) RowsForTag(tg tag.Tag) []DependencyRow {
	var out []DependencyRow
	for _, r := range t.rows {
		if r.Tag.Equal(tg) {
			out = append(out, r)
		}
	}
	return out
}

// RowsForProvision returns every row whose chosen provision is p,
// identified by ID so a stale *Provision pointer from before a reset
// still matches correctly.
func (t *DependencyTable) RowsForProvision(p ids.ProvisionID) []DependencyRow {
	var out []DependencyRow
	for _, r := range t.rows {
		if r.Chosen != nil && r.ChosenID == p {
			out = append(out, r)
		}
	}
	return out
}

// EraseDriver removes every row recorded by driver.
func (t *DependencyTable) EraseDriver(driver ids.DriverID) {
	out := t.rows[:0]
	for _, r := range t.rows {
		if r.Driver != driver {
			out = append(out, r)
		}
	}
	t.rows = out
}

// DistinctDrivers returns, in first-seen order, every driver referenced
// by at least one row. Used to compute the "drivers that depend on
// tag T" set without duplicates.
func DistinctDrivers(rows []DependencyRow) []ids.DriverID {
	seen := make(map[ids.DriverID]bool)
	var out []ids.DriverID
	for _, r := range rows {
		if !seen[r.Driver] {
			seen[r.Driver] = true
			out = append(out, r.Driver)
		}
	}
	return out
}
