// Package provision implements Provision and TagIndex: the artifacts an
// action run contributes, and the multimap from tag to live provisions
// that answers "which providers currently satisfy this tag?".
package provision

import (
	"github.com/ekam-build/ekam/internal/artifact"
	"github.com/ekam-build/ekam/internal/ids"
	"github.com/ekam-build/ekam/internal/tag"
)

// Provision is one artifact contributed by one action run (or by the
// Engine itself, for a source file). Its content hash is frozen at the
// moment the owning driver completes; before that it is only a
// candidate pending in the driver's own bookkeeping, not yet visible
// through a TagIndex lookup.
type Provision struct {
	ID      ids.ProvisionID
	Creator ids.DriverID // ids.NoDriver for an Engine-owned source provision
	Art     artifact.Artifact
	Hash    tag.Hash
	Tags    []tag.Tag
}

// HasTag reports whether the provision carries t among its tags.
func (p *Provision) HasTag(t tag.Tag) bool {
	for _, pt := range p.Tags {
		if pt.Equal(t) {
			return true
		}
	}
	return false
}

// AddTag extends the provision's tag set if t is not already present.
func (p *Provision) AddTag(t tag.Tag) {
	if !p.HasTag(t) {
		p.Tags = append(p.Tags, t)
	}
}
