package fleet

import (
	"container/heap"
	"fmt"
	"sort"
)

// TrailerState is the tagged position of a trailer in the network.
// A trailer is never at the destination.
type TrailerState int

const (
	TrailerAtParkingFull TrailerState = iota
	TrailerAtParkingEmpty
	TrailerAtSourceFull
	TrailerAtSourceEmpty
	TrailerInTransit
)

func (s TrailerState) String() string {
	switch s {
	case TrailerAtParkingFull:
		return "at_parking_full"
	case TrailerAtParkingEmpty:
		return "at_parking_empty"
	case TrailerAtSourceFull:
		return "at_source_full"
	case TrailerAtSourceEmpty:
		return "at_source_empty"
	case TrailerInTransit:
		return "in_transit"
	default:
		return "unknown"
	}
}

type trailerSlot struct {
	id    string
	state TrailerState
}

type pendingTrailer struct {
	availableAt int // minutes from shift start
	index       int // arena index
	next        TrailerState
	seq         int
}

type pendingTrailerHeap []pendingTrailer

func (h pendingTrailerHeap) Len() int { return len(h) }
func (h pendingTrailerHeap) Less(i, j int) bool {
	if h[i].availableAt != h[j].availableAt {
		return h[i].availableAt < h[j].availableAt
	}
	return h[i].seq < h[j].seq
}
func (h pendingTrailerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *pendingTrailerHeap) Push(x any)   { *h = append(*h, x.(pendingTrailer)) }
func (h *pendingTrailerHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TrailerPool tracks concrete trailer identities through state transitions
// during materialisation. Trailers live in an arena indexed by insertion
// order; pending transitions mature through a min-heap keyed by time.
//
// Transitions maintain the fleet balance: trailers at parking (full plus
// empty) plus trailers at source plus trailers in transit always equal the
// pool size.
type TrailerPool struct {
	slots   []trailerSlot
	pending pendingTrailerHeap
	seq     int
}

// NewTrailerPool creates a pool over the given trailer IDs. The first
// fullAtParking IDs (in sorted order) start full at parking, the rest empty.
// Day-start resets re-partition with the same rule so concrete bindings are
// deterministic across runs.
func NewTrailerPool(ids []string, fullAtParking int) *TrailerPool {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	pool := &TrailerPool{slots: make([]trailerSlot, 0, len(sorted))}
	for i, id := range sorted {
		state := TrailerAtParkingEmpty
		if i < fullAtParking {
			state = TrailerAtParkingFull
		}
		pool.slots = append(pool.slots, trailerSlot{id: id, state: state})
	}
	return pool
}

// Reset re-partitions every trailer to the day-start counts reported by the
// solver and clears all pending reservations.
func (p *TrailerPool) Reset(fullAtParking int) {
	p.pending = nil
	p.seq = 0
	for i := range p.slots {
		if i < fullAtParking {
			p.slots[i].state = TrailerAtParkingFull
		} else {
			p.slots[i].state = TrailerAtParkingEmpty
		}
	}
}

// Mature applies every pending transition whose availability time has passed
func (p *TrailerPool) Mature(now int) {
	for len(p.pending) > 0 && p.pending[0].availableAt <= now {
		next := heap.Pop(&p.pending).(pendingTrailer)
		p.slots[next.index].state = next.next
	}
}

// Acquire removes one trailer in the wanted state, lowest ID first, after
// maturing pending transitions up to now. Returns the trailer ID.
func (p *TrailerPool) Acquire(now int, wanted TrailerState) (string, error) {
	p.Mature(now)
	for i := range p.slots {
		if p.slots[i].state == wanted {
			p.slots[i].state = TrailerInTransit
			return p.slots[i].id, nil
		}
	}
	return "", fmt.Errorf("no trailer in state %s at minute %d", wanted, now)
}

// Schedule parks a previously acquired trailer into a new state once the
// availability time is reached.
func (p *TrailerPool) Schedule(id string, availableAt int, next TrailerState) error {
	for i := range p.slots {
		if p.slots[i].id == id {
			p.seq++
			heap.Push(&p.pending, pendingTrailer{
				availableAt: availableAt,
				index:       i,
				next:        next,
				seq:         p.seq,
			})
			return nil
		}
	}
	return fmt.Errorf("unknown trailer %s", id)
}

// Count returns how many trailers are currently in the given state,
// ignoring pending transitions.
func (p *TrailerPool) Count(state TrailerState) int {
	n := 0
	for i := range p.slots {
		if p.slots[i].state == state {
			n++
		}
	}
	return n
}
