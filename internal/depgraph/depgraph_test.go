package depgraph

import (
	"testing"

	"github.com/ekam-build/ekam/internal/ids"
	"github.com/ekam-build/ekam/internal/provision"
	"github.com/ekam-build/ekam/internal/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyTable_RecordAndQuery(t *testing.T) {
	dt := NewDependencyTable()
	ht := tag.FromName("header:x.h")
	p := &provision.Provision{ID: 1}

	dt.Record(ht, ids.DriverID(1), p)
	dt.Record(ht, ids.DriverID(2), nil)

	assert.Len(t, dt.RowsForTag(ht), 2)
	assert.Len(t, dt.RowsForDriver(ids.DriverID(1)), 1)
	assert.Len(t, dt.RowsForProvision(1), 1)
}

func TestDependencyTable_EraseDriver(t *testing.T) {
	dt := NewDependencyTable()
	ht := tag.FromName("header:x.h")
	dt.Record(ht, ids.DriverID(1), nil)
	dt.Record(ht, ids.DriverID(2), nil)

	dt.EraseDriver(ids.DriverID(1))

	assert.Empty(t, dt.RowsForDriver(ids.DriverID(1)))
	assert.Len(t, dt.RowsForDriver(ids.DriverID(2)), 1)
}

func TestDistinctDrivers_NoDuplicates(t *testing.T) {
	rows := []DependencyRow{
		{Driver: ids.DriverID(1)},
		{Driver: ids.DriverID(2)},
		{Driver: ids.DriverID(1)},
	}
	out := DistinctDrivers(rows)
	assert.Equal(t, []ids.DriverID{ids.DriverID(1), ids.DriverID(2)}, out)
}

type fakeFactory struct {
	tags []tag.Tag
}

func (f *fakeFactory) Tags() []tag.Tag { return f.tags }

func TestTriggerRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewTriggerRegistry()
	protoTag := tag.FromName("filetype:.proto")
	f := &fakeFactory{tags: []tag.Tag{protoTag}}

	reg.Register(ids.FactoryID(1), f, ids.NoDriver)

	found := reg.FactoriesForTag(protoTag)
	require.Len(t, found, 1)
	assert.Same(t, f, found[0])
}

func TestTriggerRegistry_UnregisterRemovesRows(t *testing.T) {
	reg := NewTriggerRegistry()
	protoTag := tag.FromName("filetype:.proto")
	f := &fakeFactory{tags: []tag.Tag{protoTag}}
	reg.Register(ids.FactoryID(1), f, ids.DriverID(7))

	reg.Unregister(ids.FactoryID(1))

	assert.Empty(t, reg.FactoriesForTag(protoTag))
}

func TestTriggerRegistry_FactoriesOwnedBy(t *testing.T) {
	reg := NewTriggerRegistry()
	f := &fakeFactory{tags: []tag.Tag{tag.FromName("t")}}
	reg.Register(ids.FactoryID(1), f, ids.DriverID(7))
	reg.Register(ids.FactoryID(2), f, ids.NoDriver)

	owned := reg.FactoriesOwnedBy(ids.DriverID(7))
	assert.Equal(t, []ids.FactoryID{ids.FactoryID(1)}, owned)
}
