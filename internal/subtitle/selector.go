// SPDX-License-Identifier: MIT
package subtitle

import "sync/atomic"

// Selector tracks the active cue index for a Store as the media clock
// advances, using a fast path against the previously-selected cue and
// falling back to binary search.
type Selector struct {
	store     *Store
	lastIndex atomic.Int32
}

// NewSelector returns a Selector with no cue selected.
func NewSelector(store *Store) *Selector {
	sel := &Selector{store: store}
	sel.lastIndex.Store(-1)
	return sel
}

// Select returns the index of the cue active at timestamp t, or -1 if none.
// It only publishes a new lastIndex when the computed value differs from
// the previous one.
func (sel *Selector) Select(t float64) int32 {
	cues := sel.store.Load()
	last := sel.lastIndex.Load()

	if last >= 0 && int(last) < len(cues) {
		if c := cues[last]; t >= c.Start && t <= c.End {
			return last
		}
	}

	// Binary search for the greatest index j with cues[j].Start <= t,
	// written as a plain loop rather than sort.Search so this stays
	// allocation-free when called from the audio callback thread.
	lo, hi := 0, len(cues)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		if cues[mid].Start <= t {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	j := lo - 1

	var result int32 = -1
	if j >= 0 && t <= cues[j].End {
		result = int32(j)
	}

	if result != last {
		sel.lastIndex.Store(result)
	}
	return result
}

// Index returns the most recently published index without recomputing.
func (sel *Selector) Index() int32 {
	return sel.lastIndex.Load()
}

// Reset clears the selector back to "no cue selected". Called on stop.
func (sel *Selector) Reset() {
	sel.lastIndex.Store(-1)
}
