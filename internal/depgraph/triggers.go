package depgraph

import (
	"github.com/ekam-build/ekam/internal/ids"
	"github.com/ekam-build/ekam/internal/tag"
)

// Factory is the subset of action.ActionFactory the trigger registry
// needs. It is redeclared here (rather than imported from package
// action) to keep depgraph a leaf package with no dependency on the
// action/driver layer above it.
type Factory interface {
	Tags() []tag.Tag
}

// TriggerRow is one (tag, factory) registration: when a provision
// carrying Tag appears, Factory.TryMakeAction is invoked for it.
type TriggerRow struct {
	Tag       tag.Tag
	FactoryID ids.FactoryID
}

// TriggerRegistry is the set of (tag, ActionFactory) rows used to
// dispatch new provisions to waiting factories. It also tracks, per
// factory, which driver registered it dynamically via
// ActionContext.AddActionType, so a reset of that driver can remove
// the factory again.
type TriggerRegistry struct {
	rows         []TriggerRow
	factories    map[ids.FactoryID]Factory
	registeredBy map[ids.FactoryID]ids.DriverID // absent for factories added via Engine.AddActionFactory
}

// NewTriggerRegistry returns an empty registry.
func NewTriggerRegistry() *TriggerRegistry {
	return &TriggerRegistry{
		factories:    make(map[ids.FactoryID]Factory),
		registeredBy: make(map[ids.FactoryID]ids.DriverID),
	}
}

// Register adds factory, keyed by every tag it enumerates. owner is
// ids.NoDriver for factories added through Engine.AddActionFactory and
// the registering driver's ID for ones added via AddActionType.
func (r *TriggerRegistry) Register(id ids.FactoryID, factory Factory, owner ids.DriverID) {
	r.factories[id] = factory
	if owner != ids.NoDriver {
		r.registeredBy[id] = owner
	}
	for _, t := range factory.Tags() {
		r.rows = append(r.rows, TriggerRow{Tag: t, FactoryID: id})
	}
}

// FactoriesForTag returns every factory registered for tag t.
func (r *TriggerRegistry) FactoriesForTag(t tag.Tag) []Factory {
	var out []Factory
	for _, row := range r.rows {
		if row.Tag.Equal(t) {
			out = append(out, r.factories[row.FactoryID])
		}
	}
	return out
}

// RowsForTag returns the (tag, factoryID) rows matching t, for callers
// that need the ID alongside the factory (e.g. to record which factory
// created a given driver, for the reset cascade).
func (r *TriggerRegistry) RowsForTag(t tag.Tag) []TriggerRow {
	var out []TriggerRow
	for _, row := range r.rows {
		if row.Tag.Equal(t) {
			out = append(out, row)
		}
	}
	return out
}

// Factory returns the factory registered under id, if any.
func (r *TriggerRegistry) Factory(id ids.FactoryID) (Factory, bool) {
	f, ok := r.factories[id]
	return f, ok
}

// AllFactories returns every currently registered factory, in no
// particular order (it iterates a map).
func (r *TriggerRegistry) AllFactories() []Factory {
	out := make([]Factory, 0, len(r.factories))
	for id := range r.factories {
		out = append(out, r.factories[id])
	}
	return out
}

// FactoriesOwnedBy returns the IDs of every factory registered by
// driver via AddActionType.
func (r *TriggerRegistry) FactoriesOwnedBy(driver ids.DriverID) []ids.FactoryID {
	var out []ids.FactoryID
	for id, owner := range r.registeredBy {
		if owner == driver {
			out = append(out, id)
		}
	}
	return out
}

// Unregister removes factory id from the registry entirely: resetting
// the driver that added it removes it.
func (r *TriggerRegistry) Unregister(id ids.FactoryID) {
	delete(r.factories, id)
	delete(r.registeredBy, id)
	out := r.rows[:0]
	for _, row := range r.rows {
		if row.FactoryID != id {
			out = append(out, row)
		}
	}
	r.rows = out
}
