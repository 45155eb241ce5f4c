package fleet

import (
	"fmt"
	"sort"
)

// tractorSlot is the materialisation-time view of one tractor
type tractorSlot struct {
	id            string
	atDestination bool
	tankFull      bool
	freeAt        int // minutes from shift start
}

// TractorPool tracks concrete tractor identities, their integrated tank
// state and their availability during materialisation. A busy tractor's
// tank state is invisible until it frees, so tank transitions are applied
// at acquire time.
type TractorPool struct {
	slots []tractorSlot
}

// NewTractorPool creates a pool. parkingIDs are at the yard, of which the
// first fullTank IDs (sorted) carry a full integrated tank; destinationIDs
// are at the destination with empty tanks.
func NewTractorPool(parkingIDs, destinationIDs []string, fullTank int) *TractorPool {
	parking := append([]string(nil), parkingIDs...)
	sort.Strings(parking)
	dest := append([]string(nil), destinationIDs...)
	sort.Strings(dest)

	pool := &TractorPool{}
	for i, id := range parking {
		pool.slots = append(pool.slots, tractorSlot{id: id, tankFull: i < fullTank})
	}
	for _, id := range dest {
		pool.slots = append(pool.slots, tractorSlot{id: id, atDestination: true})
	}
	return pool
}

// Reset re-partitions tank states to the day-start count reported by the
// solver and frees every tractor.
func (p *TractorPool) Reset(fullTankAtParking int) {
	full := 0
	for i := range p.slots {
		p.slots[i].freeAt = 0
		if p.slots[i].atDestination {
			p.slots[i].tankFull = false
			continue
		}
		p.slots[i].tankFull = full < fullTankAtParking
		if p.slots[i].tankFull {
			full++
		}
	}
}

// AcquireAtParking selects a free tractor at the yard whose tank state
// matches, lowest ID first, and marks it busy until freeAt.
func (p *TractorPool) AcquireAtParking(now int, tankFull bool, freeAt int) (string, error) {
	for i := range p.slots {
		s := &p.slots[i]
		if s.atDestination || s.freeAt > now || s.tankFull != tankFull {
			continue
		}
		s.freeAt = freeAt
		return s.id, nil
	}
	return "", fmt.Errorf("no free tractor at parking (tankFull=%t) at minute %d", tankFull, now)
}

// AcquireAtDestination selects a free tractor at the destination and marks
// it busy until freeAt.
func (p *TractorPool) AcquireAtDestination(now, freeAt int) (string, error) {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.atDestination || s.freeAt > now {
			continue
		}
		s.freeAt = freeAt
		return s.id, nil
	}
	return "", fmt.Errorf("no free tractor at destination at minute %d", now)
}

// SetTank overwrites the tank state of a tractor
func (p *TractorPool) SetTank(id string, full bool) error {
	for i := range p.slots {
		if p.slots[i].id == id {
			p.slots[i].tankFull = full
			return nil
		}
	}
	return fmt.Errorf("unknown tractor %s", id)
}

// CountParkingFullTank returns how many yard tractors carry a full tank,
// regardless of busyness. Used for end-of-day reconciliation.
func (p *TractorPool) CountParkingFullTank() int {
	n := 0
	for i := range p.slots {
		if !p.slots[i].atDestination && p.slots[i].tankFull {
			n++
		}
	}
	return n
}
