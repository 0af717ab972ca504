package provision

import (
	"sort"
	"strings"
	"sync"

	"github.com/ekam-build/ekam/internal/tag"
)

// TagIndex is the multimap tag -> set-of-Provision. Insertion is O(1)
// amortised per tag; removal scans the bucket of each of the
// provision's tags. Lookup applies the preferred-provider
// ordering relative to a consumer's canonical source path.
type TagIndex struct {
	mu   sync.Mutex
	byID map[tag.Tag][]*Provision
}

// NewTagIndex returns an empty index.
func NewTagIndex() *TagIndex {
	return &TagIndex{byID: make(map[tag.Tag][]*Provision)}
}

// Insert registers p under every tag it carries. It is the caller's
// responsibility to ensure p is only inserted once a driver's return
// procedure has frozen its content hash.
func (idx *TagIndex) Insert(p *Provision) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, t := range p.Tags {
		idx.byID[t] = append(idx.byID[t], p)
	}
}

// Remove unregisters p from every tag it carries.
func (idx *TagIndex) Remove(p *Provision) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, t := range p.Tags {
		bucket := idx.byID[t]
		for i, cand := range bucket {
			if cand.ID == p.ID {
				idx.byID[t] = append(bucket[:i], bucket[i+1:]...)
				break
			}
		}
		if len(idx.byID[t]) == 0 {
			delete(idx.byID, t)
		}
	}
}

// Candidates returns every live provision currently tagged t, in no
// particular order. Use Preferred to apply the selection policy.
func (idx *TagIndex) Candidates(t tag.Tag) []*Provision {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	bucket := idx.byID[t]
	out := make([]*Provision, len(bucket))
	copy(out, bucket)
	return out
}

// Preferred resolves tag t to the single best provision for a consumer
// rooted at consumerCanonicalName, applying this ordering:
//
//  1. longest common character prefix of the candidate's canonical name
//     with the consumer's canonical name wins;
//  2. on tie, shallowest directory depth wins;
//  3. on tie, lexicographically smallest canonical name wins.
//
// It returns (nil, false) if no provision carries the tag.
func (idx *TagIndex) Preferred(t tag.Tag, consumerCanonicalName string) (*Provision, bool) {
	candidates := idx.Candidates(t)
	if len(candidates) == 0 {
		return nil, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return less(candidates[i], candidates[j], consumerCanonicalName)
	})
	return candidates[0], true
}

func less(a, b *Provision, consumerCanonicalName string) bool {
	pa := commonPrefixLen(a.Art.CanonicalName(), consumerCanonicalName)
	pb := commonPrefixLen(b.Art.CanonicalName(), consumerCanonicalName)
	if pa != pb {
		return pa > pb // longer prefix sorts first
	}
	da := depth(a.Art.CanonicalName())
	db := depth(b.Art.CanonicalName())
	if da != db {
		return da < db // shallower sorts first
	}
	return a.Art.CanonicalName() < b.Art.CanonicalName()
}

// commonPrefixLen returns the length, in bytes, of the longest common
// prefix of a and b.
func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func depth(canonical string) int {
	if canonical == "." || canonical == "" {
		return 0
	}
	return strings.Count(canonical, "/") + 1
}
